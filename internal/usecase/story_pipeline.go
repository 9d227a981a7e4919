package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storyweaver/internal/cache"
	"storyweaver/internal/domain"
	"storyweaver/internal/ports"
	"storyweaver/internal/safety"
	"storyweaver/internal/story"
)

// correctiveSuffix is appended to the system prompt for the single retry
// issued after a post-generation contract violation.
const correctiveSuffix = "\n\nCRITICAL: The story MUST be within the exact word count range for %s level. " +
	"Current limits: Preschool (60-140 words), Early Elementary (120-220 words), Elementary (180-320 words). " +
	"Count your words carefully and be concise while maintaining quality. Include exactly 2 discussion questions."

// StoryOutcome wraps a generation result with the response metadata the
// handler exposes through headers.
type StoryOutcome struct {
	Result   domain.StoryResult
	CacheHit bool
	Hash     string
	Model    string
}

// StoryPipelineDeps wires the generation collaborators.
type StoryPipelineDeps struct {
	Chat    ports.ChatClient
	Prompts *story.PromptLoader
	Stories *cache.Cache[domain.StoryResult]
	Logger  *slog.Logger
}

// StoryPipeline runs refuse → hash → cache → prompt → generate → parse →
// validate, with exactly one corrective retry on a contract violation.
type StoryPipeline struct {
	chat    ports.ChatClient
	prompts *story.PromptLoader
	stories *cache.Cache[domain.StoryResult]
	logger  *slog.Logger
}

// NewStoryPipeline constructs the generation orchestration component.
func NewStoryPipeline(deps StoryPipelineDeps) *StoryPipeline {
	stories := deps.Stories
	if stories == nil {
		stories = cache.New[domain.StoryResult]()
	}

	return &StoryPipeline{
		chat:    deps.Chat,
		prompts: deps.Prompts,
		stories: stories,
		logger:  deps.Logger,
	}
}

// Generate produces a validated story for the request. Identical requests
// within the cache TTL are served from cache; concurrent misses for the same
// key may each call the upstream capability, with the last validated result
// winning the cache slot.
func (p *StoryPipeline) Generate(ctx context.Context, req domain.StoryRequest) (StoryOutcome, error) {
	if p.chat == nil {
		return StoryOutcome{}, fmt.Errorf("story generation is not configured")
	}

	level := req.ReadingLevel
	if level == "" {
		level = domain.LevelElementary
	}

	if refusal := safety.MaybeRefuse(req.ArticleText); refusal != nil {
		return StoryOutcome{}, refusal
	}

	hash := story.RequestHash(req.ArticleText, level)
	if cached, ok := p.stories.Get(hash); ok {
		return StoryOutcome{Result: cached, CacheHit: true, Hash: hash, Model: p.chat.Model()}, nil
	}

	vars := story.PromptVars{
		ReadingLevel: string(level),
		ArticleText:  req.ArticleText,
	}
	systemPrompt := p.prompts.Load("system.story", vars)
	userPrompt := p.prompts.Load("user.story", vars)

	result, err := p.attempt(ctx, systemPrompt, userPrompt, level, 0.7)
	if err != nil {
		var validationErr *story.ValidationError
		if !errors.As(err, &validationErr) {
			return StoryOutcome{}, err
		}

		p.warn("generation violated contract, issuing corrective retry", "hash", hash, "violation", validationErr.Message)

		corrective := systemPrompt + fmt.Sprintf(correctiveSuffix, level)
		result, err = p.attempt(ctx, corrective, userPrompt, level, 0.5)
		if err != nil {
			return StoryOutcome{}, fmt.Errorf("corrective retry: %w", err)
		}
	}

	p.stories.Set(hash, result, cache.DefaultTTL)
	return StoryOutcome{Result: result, CacheHit: false, Hash: hash, Model: p.chat.Model()}, nil
}

// attempt runs one generation call and validates its output.
func (p *StoryPipeline) attempt(ctx context.Context, systemPrompt, userPrompt string, level domain.ReadingLevel, temperature float64) (domain.StoryResult, error) {
	raw, err := p.chat.ChatCompletion(ctx, []ports.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, ports.ChatOptions{Temperature: temperature})
	if err != nil {
		return domain.StoryResult{}, err
	}

	result := story.ParseOutput(raw, level)
	if err := story.PostCheck(result, level); err != nil {
		return domain.StoryResult{}, err
	}

	return result, nil
}

func (p *StoryPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
