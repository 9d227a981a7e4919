package safety

import (
	"fmt"
	"strings"
)

const maxArticleLength = 10000
const minArticleLength = 50

// RefusalError is the expected, user-visible outcome of the pre-generation
// screen. It is not a system failure.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return e.Reason
}

// MaybeRefuse screens raw user-submitted article text before any generation
// attempt. It refuses on unsafe vocabulary without a safe-context word, on
// excessive length, and on insufficient content.
func MaybeRefuse(input string) *RefusalError {
	text := strings.ToLower(input)

	if unsafe := matchKeywords(text, unsafeKeywords); len(unsafe) > 0 && !hasSafeContext(text) {
		return &RefusalError{Reason: fmt.Sprintf(
			"Content contains potentially inappropriate topics: %s. Please provide a different news article.",
			strings.Join(unsafe, ", "),
		)}
	}

	if len(input) > maxArticleLength {
		return &RefusalError{Reason: "Article text is too long. Please provide a shorter, more focused news article."}
	}

	if len(strings.TrimSpace(input)) < minArticleLength {
		return &RefusalError{Reason: "Article text is too short. Please provide a more detailed news article."}
	}

	return nil
}
