package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"storyweaver/internal/domain"
	"storyweaver/internal/ports"
)

// Parser turns one RSS/Atom document into normalized articles.
type Parser struct {
	fp     *gofeed.Parser
	logger *slog.Logger
}

var _ ports.FeedParser = (*Parser)(nil)

// NewParser wires a gofeed parser; client defaults to a 10s-timeout client.
func NewParser(client *http.Client, logger *slog.Logger) *Parser {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	fp := gofeed.NewParser()
	fp.Client = client
	fp.UserAgent = "Story Generator RSS Parser/1.0"

	return &Parser{fp: fp, logger: logger}
}

// ParseFeed fetches and parses the feed, returning articles ready for
// aggregation. Items without a link or title are skipped, as are items whose
// link cannot be normalized. A forced category short-circuits inference.
func (p *Parser) ParseFeed(ctx context.Context, feedURL string, forced domain.Category) ([]domain.Article, error) {
	parsed, err := p.fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		normalized, ok := NormalizeURL(item.Link)
		if !ok {
			p.debug("skip item with invalid link", "feed", feedURL, "link", item.Link)
			continue
		}

		source := ExtractSource(normalized)
		content := cleanContent(itemContent(item))

		category := forced
		if category == "" {
			category = inferCategory(item.Title, content, source)
		}

		article := domain.Article{
			URL:      normalized,
			Title:    strings.TrimSpace(item.Title),
			Content:  content,
			Source:   source,
			Category: category,
		}
		article.URLHash = article.DedupHash()

		if item.PublishedParsed != nil {
			article.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			article.PublishedAt = item.UpdatedParsed
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func itemContent(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// cleanContent strips HTML tags and collapses whitespace.
func cleanContent(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil {
		content = doc.Text()
	}
	return strings.Join(strings.Fields(content), " ")
}

// Category inference is an ordered rule table: source-domain rules are checked
// before keyword rules, and the first match wins.
var sourceRules = []struct {
	fragment string
	category domain.Category
}{
	{"sciencedaily", domain.CategoryScience},
	{"goodnewsnetwork", domain.CategoryPositive},
	{"edutopia", domain.CategoryEducation},
	{"nationalgeographic", domain.CategoryNature},
	{"si.com", domain.CategorySports},
}

var keywordRules = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryScience, []string{"science", "research", "study"}},
	{domain.CategoryNature, []string{"nature", "animal", "environment"}},
	{domain.CategorySports, []string{"sport", "game", "team"}},
	{domain.CategoryArts, []string{"art", "music", "creative"}},
	{domain.CategoryEducation, []string{"school", "student", "learn"}},
	{domain.CategoryTechnology, []string{"tech", "computer", "digital"}},
	{domain.CategoryPositive, []string{"good news", "positive", "happy"}},
}

func inferCategory(title, content, source string) domain.Category {
	for _, rule := range sourceRules {
		if strings.Contains(source, rule.fragment) {
			return rule.category
		}
	}

	text := strings.ToLower(title) + " " + strings.ToLower(content)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}

	return domain.CategoryScience
}

func (p *Parser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
