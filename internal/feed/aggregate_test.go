package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storyweaver/internal/domain"
)

type fakeParser struct {
	feeds map[string][]domain.Article
	fail  map[string]error
}

func (f *fakeParser) ParseFeed(ctx context.Context, feedURL string, forced domain.Category) ([]domain.Article, error) {
	if err, ok := f.fail[feedURL]; ok {
		return nil, err
	}
	return f.feeds[feedURL], nil
}

func article(url, source string, publishedAt *time.Time) domain.Article {
	a := domain.Article{URL: url, Title: "title for " + url, Source: source, Category: domain.CategoryScience, PublishedAt: publishedAt}
	a.URLHash = a.DedupHash()
	return a
}

func timePtr(t time.Time) *time.Time { return &t }

func TestFetchMergesAndDeduplicates(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	shared := article("https://a.com/1", "a.com", timePtr(base))

	parser := &fakeParser{feeds: map[string][]domain.Article{
		"https://feed-one": {shared, article("https://a.com/2", "a.com", timePtr(base.Add(-time.Hour)))},
		"https://feed-two": {shared, article("https://b.com/1", "b.com", timePtr(base.Add(time.Hour)))},
	}}

	agg := NewAggregator(parser, map[domain.Category][]string{
		domain.CategoryScience: {"https://feed-one", "https://feed-two"},
	}, time.Second, nil)

	result := agg.Fetch(context.Background(), []domain.Category{domain.CategoryScience}, 0)
	require.Empty(t, result.Errors)
	require.Len(t, result.Items, 3, "duplicate URL must appear once")

	// Newest first.
	require.Equal(t, "https://b.com/1", result.Items[0].URL)
	require.Equal(t, "https://a.com/1", result.Items[1].URL)
	require.Equal(t, "https://a.com/2", result.Items[2].URL)
}

func TestFetchIsolatesFeedFailures(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{
		feeds: map[string][]domain.Article{
			"https://good": {article("https://a.com/1", "a.com", nil)},
		},
		fail: map[string]error{
			"https://broken": fmt.Errorf("connection refused"),
		},
	}

	agg := NewAggregator(parser, map[domain.Category][]string{
		domain.CategoryScience: {"https://good", "https://broken"},
	}, time.Second, nil)

	result := agg.Fetch(context.Background(), []domain.Category{domain.CategoryScience}, 0)
	require.Len(t, result.Items, 1)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "https://broken", result.Errors[0].URL)
	require.Contains(t, result.Errors[0].Message, "connection refused")
}

func TestFetchTruncates(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	var items []domain.Article
	for i := 0; i < 5; i++ {
		items = append(items, article(fmt.Sprintf("https://a.com/%d", i), "a.com", timePtr(base.Add(-time.Duration(i)*time.Hour))))
	}

	parser := &fakeParser{feeds: map[string][]domain.Article{"https://feed": items}}
	agg := NewAggregator(parser, map[domain.Category][]string{domain.CategoryScience: {"https://feed"}}, time.Second, nil)

	result := agg.Fetch(context.Background(), []domain.Category{domain.CategoryScience}, 2)
	require.Len(t, result.Items, 2)
	require.Equal(t, "https://a.com/0", result.Items[0].URL)
}

func TestSortByRecencyUndatedLast(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	articles := []domain.Article{
		article("https://a.com/undated", "a.com", nil),
		article("https://a.com/old", "a.com", timePtr(base.Add(-48*time.Hour))),
		article("https://a.com/new", "a.com", timePtr(base)),
	}

	SortByRecency(articles)

	require.Equal(t, "https://a.com/new", articles[0].URL)
	require.Equal(t, "https://a.com/old", articles[1].URL)
	require.Equal(t, "https://a.com/undated", articles[2].URL)
}

func TestDedupeByHashKeepsFirstSeen(t *testing.T) {
	t.Parallel()

	first := article("https://a.com/1", "a.com", nil)
	first.Title = "first"
	second := article("https://a.com/1", "a.com", nil)
	second.Title = "second"

	deduped := dedupeByHash([]domain.Article{first, second})
	require.Len(t, deduped, 1)
	require.Equal(t, "first", deduped[0].Title)
}
