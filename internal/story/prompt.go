package story

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// PromptVars are the substitution variables available to templates.
type PromptVars struct {
	ReadingLevel string
	ArticleText  string
	StyleHints   string
}

var styleHintsBlock = regexp.MustCompile(`(?s)\{\{#if styleHints\}\}.*?\{\{/if\}\}`)

// PromptLoader reads named templates from a directory and interpolates
// variables. When a template file cannot be read it falls over to a
// hardcoded equivalent so generation never fails on a missing file.
type PromptLoader struct {
	dir    string
	logger *slog.Logger
}

// NewPromptLoader points the loader at the template directory.
func NewPromptLoader(dir string, logger *slog.Logger) *PromptLoader {
	return &PromptLoader{dir: dir, logger: logger}
}

// Load resolves "<dir>/<name>.md", substituting {{readingLevel}},
// {{articleText}} and the conditional {{#if styleHints}} block.
func (l *PromptLoader) Load(name string, vars PromptVars) string {
	raw, err := os.ReadFile(filepath.Join(l.dir, name+".md"))
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("prompt template unavailable, using fallback", "template", name, "error", err)
		}
		return substitute(fallbackPrompt(name), vars)
	}
	return substitute(string(raw), vars)
}

func substitute(template string, vars PromptVars) string {
	result := strings.ReplaceAll(template, "{{readingLevel}}", vars.ReadingLevel)
	result = strings.ReplaceAll(result, "{{articleText}}", vars.ArticleText)

	if vars.StyleHints != "" {
		result = strings.ReplaceAll(result, "{{#if styleHints}}", "")
		result = strings.ReplaceAll(result, "{{/if}}", "")
		result = strings.ReplaceAll(result, "{{styleHints}}", vars.StyleHints)
	} else {
		result = styleHintsBlock.ReplaceAllString(result, "")
	}

	return result
}

func fallbackPrompt(name string) string {
	switch name {
	case "system.story":
		return `You are a skilled children's storyteller who creates engaging, educational allegorical stories based on real-world events. You are specifically adapting stories for {{readingLevel}} children. Your stories are always age-appropriate, positive, and include valuable life lessons tailored to the reading level.

Return a JSON object with exactly this structure:
{
  "story": "Your complete story here...",
  "questions": ["First discussion question?", "Second discussion question?"]
}`
	case "user.story":
		return `Based on this news story: "{{articleText}}"

Create an allegorical story for {{readingLevel}} children that transforms the real-world events into an age-appropriate animal story or fantasy scenario. Include exactly 2 discussion questions that help children think about the story's themes.`
	default:
		return "Create a story for {{readingLevel}} children based on: {{articleText}}"
	}
}
