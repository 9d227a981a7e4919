package ports

import (
	"context"
	"time"

	"storyweaver/internal/domain"
)

// FeedParser turns one remote feed document into normalized articles.
type FeedParser interface {
	ParseFeed(ctx context.Context, feedURL string, forced domain.Category) ([]domain.Article, error)
}

// ArticleStore persists aggregated articles and cached feed pages.
// Inserting an article whose url_hash already exists is a no-op.
type ArticleStore interface {
	InsertArticles(ctx context.Context, articles []domain.Article) (int, error)
	UpsertFeedCache(ctx context.Context, key string, articles []domain.Article, expiresAt time.Time) error
}

// ChatMessage is one turn of a chat-completion conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tune a single completion call.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// ChatClient invokes the completion capability (OpenAI-compatible APIs).
type ChatClient interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
	Model() string
}

// Scheduler controls when background refresh jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
