package feed

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"storyweaver/internal/domain"
	"storyweaver/internal/ports"
)

// FeedError records one feed that could not be fetched or parsed. It is
// surfaced for observability only and never fails the aggregation.
type FeedError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// AggregateResult holds merged, deduplicated, recency-sorted articles plus
// the per-feed failures collected along the way.
type AggregateResult struct {
	Items  []domain.Article
	Errors []FeedError
}

// Aggregator fans out across the configured feeds of the requested categories.
type Aggregator struct {
	parser  ports.FeedParser
	sources map[domain.Category][]string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAggregator wires the parser with the category-to-feed-URL table.
func NewAggregator(parser ports.FeedParser, sources map[domain.Category][]string, timeout time.Duration, logger *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Aggregator{parser: parser, sources: sources, timeout: timeout, logger: logger}
}

type feedTask struct {
	url      string
	category domain.Category
}

// Fetch pulls every feed of the requested categories concurrently, merges the
// results, deduplicates by URL hash (first seen wins), sorts by recency with
// undated articles last, and truncates to maxTotal. A slow or broken feed only
// drops its own contribution.
func (a *Aggregator) Fetch(ctx context.Context, categories []domain.Category, maxTotal int) AggregateResult {
	if len(categories) == 0 {
		categories = domain.AllCategories()
	}

	var tasks []feedTask
	for _, category := range categories {
		for _, url := range a.sources[category] {
			tasks = append(tasks, feedTask{url: url, category: category})
		}
	}

	// Per-task slots keep merge order deterministic regardless of which
	// fetch finishes first.
	articles := make([][]domain.Article, len(tasks))
	failures := make([]*FeedError, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task feedTask) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			items, err := a.parser.ParseFeed(fetchCtx, task.url, task.category)
			if err != nil {
				failures[i] = &FeedError{URL: task.url, Message: err.Error()}
				return
			}
			articles[i] = items
		}(i, task)
	}
	wg.Wait()

	result := AggregateResult{}
	for i := range tasks {
		if failures[i] != nil {
			result.Errors = append(result.Errors, *failures[i])
			continue
		}
		result.Items = append(result.Items, articles[i]...)
	}

	result.Items = dedupeByHash(result.Items)
	SortByRecency(result.Items)

	if maxTotal > 0 && len(result.Items) > maxTotal {
		result.Items = result.Items[:maxTotal]
	}

	a.debug("aggregation done", "feeds", len(tasks), "articles", len(result.Items), "errors", len(result.Errors))
	return result
}

// dedupeByHash keeps the first-seen article for each URL hash.
func dedupeByHash(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	deduped := make([]domain.Article, 0, len(articles))

	for _, article := range articles {
		hash := article.URLHash
		if hash == "" {
			hash = article.DedupHash()
		}
		if _, ok := seen[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}
		deduped = append(deduped, article)
	}

	return deduped
}

// SortByRecency orders articles by publish date descending with undated
// articles after all dated ones. The sort is stable so ties keep input order.
func SortByRecency(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
