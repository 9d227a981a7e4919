package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"storyweaver/internal/cache"
	"storyweaver/internal/diversity"
	"storyweaver/internal/domain"
	"storyweaver/internal/feed"
	"storyweaver/internal/ports"
	"storyweaver/internal/safety"
)

const (
	// FeedPageTTL bounds how long a rendered page is reused; it doubles as
	// the If-Modified-Since freshness window.
	FeedPageTTL = 5 * time.Minute

	// feedCacheTTL is the lifetime of persisted per-category feed snapshots.
	feedCacheTTL = 48 * time.Hour
)

// FeedMeta describes how a feed page was produced.
type FeedMeta struct {
	CacheHit          bool      `json:"cache_hit"`
	AppliedCategories []string  `json:"appliedCategories"`
	Total             int       `json:"total"`
	DiversityApplied  bool      `json:"diversity_applied"`
	SafetyApplied     bool      `json:"safety_applied"`
	SafetyFiltered    int       `json:"safety_filtered"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// FeedPage is the feed endpoint's response body.
type FeedPage struct {
	Articles []domain.Article `json:"articles"`
	Meta     FeedMeta         `json:"meta"`
}

// RefreshResult reports which categories were refreshed and how many new
// articles each contributed.
type RefreshResult struct {
	Refreshed []string       `json:"refreshed"`
	Counts    map[string]int `json:"counts"`
}

// FeedPipelineDeps wires the aggregation collaborators.
type FeedPipelineDeps struct {
	Aggregator *feed.Aggregator
	Engine     *diversity.Engine
	Store      ports.ArticleStore
	Pages      *cache.Cache[FeedPage]
	Logger     *slog.Logger
	Now        func() time.Time
}

// FeedPipeline runs aggregate → safety filter → diversify and serves the
// result through a short-lived page cache.
type FeedPipeline struct {
	aggregator *feed.Aggregator
	engine     *diversity.Engine
	store      ports.ArticleStore
	pages      *cache.Cache[FeedPage]
	logger     *slog.Logger
	now        func() time.Time
}

// NewFeedPipeline constructs the feed orchestration component.
func NewFeedPipeline(deps FeedPipelineDeps) *FeedPipeline {
	engine := deps.Engine
	if engine == nil {
		engine = diversity.NewEngine()
	}
	pages := deps.Pages
	if pages == nil {
		pages = cache.New[FeedPage]()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &FeedPipeline{
		aggregator: deps.Aggregator,
		engine:     engine,
		store:      deps.Store,
		pages:      pages,
		logger:     deps.Logger,
		now:        now,
	}
}

// Page serves a diversified, safety-filtered feed page, reusing a cached
// render when one is fresh enough.
func (p *FeedPipeline) Page(ctx context.Context, categories []domain.Category, limit int) (FeedPage, error) {
	if p.aggregator == nil {
		return FeedPage{}, fmt.Errorf("feed aggregator is not configured")
	}

	key := pageKey(categories, limit)
	if page, ok := p.pages.Get(key); ok {
		page.Meta.CacheHit = true
		return page, nil
	}

	// Aggregate with headroom: safety filtering and the source cap will
	// discard part of the pool.
	aggregated := p.aggregator.Fetch(ctx, categories, limit*2)
	for _, feedErr := range aggregated.Errors {
		p.warn("feed fetch failed", "url", feedErr.URL, "error", feedErr.Message)
	}

	filtered := safety.FilterUnsafe(aggregated.Items)
	diversified := p.engine.Diversify(filtered.Articles, diversity.DefaultOptions())

	articles := diversified.Articles
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	page := FeedPage{
		Articles: articles,
		Meta: FeedMeta{
			CacheHit:          false,
			AppliedCategories: diversified.AppliedCategories,
			Total:             len(articles),
			DiversityApplied:  diversified.DiversityApplied,
			SafetyApplied:     filtered.SafetyApplied,
			SafetyFiltered:    filtered.FilteredCount,
			LastUpdated:       p.now(),
		},
	}

	p.pages.Set(key, page, FeedPageTTL)
	return page, nil
}

// Refresh re-aggregates each requested category concurrently, applies the
// source cap, persists the articles idempotently, and writes a 48h feed
// cache snapshot. A failing category is logged and skipped; its siblings
// still complete.
func (p *FeedPipeline) Refresh(ctx context.Context, categories []domain.Category, limit int) (RefreshResult, error) {
	if p.aggregator == nil {
		return RefreshResult{}, fmt.Errorf("feed aggregator is not configured")
	}

	if len(categories) == 0 {
		categories = domain.AllCategories()
	}
	if limit <= 0 {
		limit = 20
	}

	result := RefreshResult{Counts: map[string]int{}}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, category := range categories {
		wg.Add(1)
		go func(category domain.Category) {
			defer wg.Done()

			count, err := p.refreshCategory(ctx, category, limit)
			if err != nil {
				p.warn("category refresh failed", "category", category, "error", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			result.Refreshed = append(result.Refreshed, string(category))
			result.Counts[string(category)] = count
		}(category)
	}
	wg.Wait()

	sort.Strings(result.Refreshed)
	return result, nil
}

func (p *FeedPipeline) refreshCategory(ctx context.Context, category domain.Category, limit int) (int, error) {
	aggregated := p.aggregator.Fetch(ctx, []domain.Category{category}, limit*2)
	for _, feedErr := range aggregated.Errors {
		p.warn("feed fetch failed during refresh", "category", category, "url", feedErr.URL, "error", feedErr.Message)
	}

	capped := p.engine.Diversify(aggregated.Items, diversity.Options{
		MaxPerSource:     2,
		FreshnessDecay:   48 * time.Hour,
		CategoryRotation: false,
	})

	articles := capped.Articles
	feed.SortByRecency(articles)
	if len(articles) > limit {
		articles = articles[:limit]
	}

	inserted := 0
	if p.store != nil && len(articles) > 0 {
		var err error
		inserted, err = p.store.InsertArticles(ctx, articles)
		if err != nil {
			return 0, fmt.Errorf("persist articles: %w", err)
		}

		key := fmt.Sprintf("feed:%s:%d", category, limit)
		if err := p.store.UpsertFeedCache(ctx, key, articles, p.now().Add(feedCacheTTL)); err != nil {
			return 0, fmt.Errorf("update feed cache: %w", err)
		}
	}

	return inserted, nil
}

// pageKey derives the page-cache key from the sorted category set and limit.
func pageKey(categories []domain.Category, limit int) string {
	if len(categories) == 0 {
		return fmt.Sprintf("feed:all:%d", limit)
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return fmt.Sprintf("feed:%s:%d", strings.Join(names, ","), limit)
}

func (p *FeedPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
