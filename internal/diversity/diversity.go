package diversity

import (
	"sort"
	"time"

	"storyweaver/internal/domain"
)

// Options tune the re-ranking pass.
type Options struct {
	MaxPerSource     int
	FreshnessDecay   time.Duration
	CategoryRotation bool
}

// DefaultOptions matches the feed defaults: two articles per source, a 48h
// freshness window, rotation enabled.
func DefaultOptions() Options {
	return Options{
		MaxPerSource:     2,
		FreshnessDecay:   48 * time.Hour,
		CategoryRotation: true,
	}
}

// Result carries the re-ranked articles and what the pass did.
type Result struct {
	Articles          []domain.Article `json:"articles"`
	AppliedCategories []string         `json:"appliedCategories"`
	DiversityApplied  bool             `json:"diversityApplied"`
}

// Engine re-ranks safety-filtered articles for source and category balance.
// The clock is injectable so freshness scoring is deterministic in tests.
type Engine struct {
	now func() time.Time
}

// NewEngine builds an engine on the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock builds an engine with a fixed clock source.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

type scored struct {
	article   domain.Article
	freshness float64
}

// Diversify applies, in order: freshness scoring and a stable descending sort,
// the per-source cap, and (when enabled and more than one category survives)
// a category round-robin. Internal scores are stripped from the output.
func (e *Engine) Diversify(articles []domain.Article, opts Options) Result {
	if len(articles) == 0 {
		return Result{Articles: []domain.Article{}, AppliedCategories: []string{}, DiversityApplied: false}
	}

	if opts.MaxPerSource <= 0 {
		opts.MaxPerSource = 2
	}
	if opts.FreshnessDecay <= 0 {
		opts.FreshnessDecay = 48 * time.Hour
	}

	now := e.now()
	ranked := make([]scored, 0, len(articles))
	for _, article := range articles {
		ranked = append(ranked, scored{
			article:   article,
			freshness: freshnessScore(article.PublishedAt, now, opts.FreshnessDecay),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].freshness > ranked[j].freshness
	})

	// Per-source cap: admit in freshness order while the running count for
	// the source stays below the cap.
	sourceCounts := map[string]int{}
	capped := make([]scored, 0, len(ranked))
	for _, s := range ranked {
		if sourceCounts[s.article.Source] < opts.MaxPerSource {
			sourceCounts[s.article.Source]++
			capped = append(capped, s)
		}
	}

	final := capped
	var appliedCategories []string

	if opts.CategoryRotation && len(capped) > 0 {
		groups := map[string][]scored{}
		var order []string
		for _, s := range capped {
			key := string(s.article.Category)
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], s)
		}
		appliedCategories = order

		if len(order) > 1 {
			rounds := (len(capped) + len(order) - 1) / len(order)
			rotated := make([]scored, 0, len(capped))
			for i := 0; i < rounds; i++ {
				for _, key := range order {
					if group := groups[key]; i < len(group) {
						rotated = append(rotated, group[i])
					}
				}
			}
			final = rotated
		}
	} else {
		seen := map[string]struct{}{}
		for _, s := range capped {
			key := string(s.article.Category)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				appliedCategories = append(appliedCategories, key)
			}
		}
	}

	out := make([]domain.Article, 0, len(final))
	for _, s := range final {
		out = append(out, s.article)
	}
	if appliedCategories == nil {
		appliedCategories = []string{}
	}

	return Result{Articles: out, AppliedCategories: appliedCategories, DiversityApplied: true}
}

// freshnessScore fades linearly from 1.0 at age zero toward 0 at the window
// edge, flooring at 0.1 past the window so very old items stay sortable.
// Undated (and future-dated) articles score 1.0.
func freshnessScore(publishedAt *time.Time, now time.Time, window time.Duration) float64 {
	if publishedAt == nil {
		return 1.0
	}

	age := now.Sub(*publishedAt)
	switch {
	case age > 0 && age < window:
		return 1.0 - float64(age)/float64(window)
	case age >= window:
		return 0.1
	default:
		return 1.0
	}
}
