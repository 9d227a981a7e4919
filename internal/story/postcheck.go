package story

import (
	"encoding/json"
	"fmt"
	"strings"

	"storyweaver/internal/domain"
)

// Default discussion questions used when model output cannot be parsed as
// structured data and the raw text is adopted as the story.
var defaultQuestions = []string{
	"What lesson did you learn from this story?",
	"How can you apply this lesson in your own life?",
}

// ValidationError marks a generation result that violates the per-level
// contract. The caller answers it with exactly one corrective retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type rawOutput struct {
	Story     string   `json:"story"`
	Questions []string `json:"questions"`
}

// ParseOutput turns raw model output into a StoryResult. Markdown code
// fences are stripped before parsing; when the payload still is not valid
// structured data, the whole raw output becomes the story with two generic
// questions rather than failing the request.
func ParseOutput(raw string, level domain.ReadingLevel) domain.StoryResult {
	clean := stripCodeFences(raw)

	var parsed rawOutput
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil || parsed.Story == "" {
		parsed = rawOutput{Story: raw, Questions: defaultQuestions}
	}

	return domain.StoryResult{
		Story:     parsed.Story,
		Questions: parsed.Questions,
		Meta: domain.StoryMeta{
			ReadingLevel: level,
			WordCount:    WordCount(parsed.Story),
		},
	}
}

func stripCodeFences(content string) string {
	if strings.Contains(content, "```json") {
		content = strings.ReplaceAll(content, "```json", "")
	}
	if strings.Contains(content, "```") {
		content = strings.ReplaceAll(content, "```", "")
	}
	return strings.TrimSpace(content)
}

// WordCount counts whitespace-separated words.
func WordCount(story string) int {
	return len(strings.Fields(story))
}

// PostCheck enforces the generation contract: exactly two well-formed
// discussion questions and a story word count inside the closed range for
// the reading level.
func PostCheck(res domain.StoryResult, level domain.ReadingLevel) error {
	if len(res.Questions) != 2 {
		return &ValidationError{Message: fmt.Sprintf("expected exactly 2 questions, got %d", len(res.Questions))}
	}

	for i, question := range res.Questions {
		if len(question) < 10 {
			return &ValidationError{Message: fmt.Sprintf(
				"question %d is too short (%d chars); questions should be at least 10 characters long", i+1, len(question),
			)}
		}
		if !strings.HasSuffix(question, "?") {
			return &ValidationError{Message: fmt.Sprintf("question %d should end with a question mark", i+1)}
		}
	}

	bounds := level.WordRange()
	if res.Meta.WordCount < bounds.Min || res.Meta.WordCount > bounds.Max {
		return &ValidationError{Message: fmt.Sprintf(
			"story word count (%d) is outside the acceptable range for %s (%d-%d words)",
			res.Meta.WordCount, level, bounds.Min, bounds.Max,
		)}
	}

	return nil
}
