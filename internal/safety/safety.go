package safety

import (
	"fmt"
	"strings"

	"storyweaver/internal/domain"
)

// Severity grades how heavy an article's subject matter is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
}

// escalate raises s to at least min; severity never decreases within one
// evaluation.
func escalate(s, min Severity) Severity {
	if severityRank[min] > severityRank[s] {
		return min
	}
	return s
}

// Verdict is the outcome of screening one article's text.
type Verdict struct {
	Safe     bool     `json:"safe"`
	Reasons  []string `json:"reasons"`
	AgeScore int      `json:"ageScore"`
	Severity Severity `json:"severity"`
}

// Topics that block an article outright, whatever else the text contains.
var blockedKeywords = []string{
	"domestic violence", "sexual violence", "sexual assault", "sexual abuse",
	"child abuse", "human trafficking", "trafficking", "rape", "molestation",
	"incest",
}

// Hard-news topics: allowed, but scored up for younger readers.
var hardNewsKeywords = []string{
	"war", "conflict", "military", "diplomacy", "diplomatic", "refugee",
	"invasion", "troops", "ceasefire", "sanctions",
}

// Graphic-severity vocabulary; each match compounds the score.
var severityKeywords = []string{
	"killed", "massacre", "terrorist", "terrorism", "casualties", "death toll",
	"shooting", "bombing", "execution", "genocide",
}

var unsafeKeywords = []string{
	// Violence
	"violence", "violent", "attack", "assault", "murder", "kill", "death", "die", "dead",
	"weapon", "gun", "knife", "bomb", "explosion", "war", "battle", "fight", "fighting",

	// Adult content
	"sex", "sexual", "porn", "adult", "nude", "naked", "intimate",

	// Drugs and alcohol
	"drug", "drugs", "cocaine", "heroin", "marijuana", "alcohol", "drunk", "drinking",

	// Self-harm
	"suicide", "self-harm", "cutting", "overdose",

	// Hate speech indicators
	"hate", "racist", "discrimination", "prejudice", "bigotry",
}

// Words that can mark an otherwise risky match as appearing in a safe context
// (news reporting, education, prevention).
var contextSafeWords = []string{
	"news", "article", "story", "report", "event", "situation", "problem", "issue",
	"help", "support", "community", "education", "awareness", "prevention",
}

func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func hasSafeContext(text string) bool {
	for _, w := range contextSafeWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Evaluate screens one article's title and content for age-appropriateness.
// It is a pure function of the text: evaluating the same article twice yields
// the same verdict. The returned AgeScore is clamped to [0,100] and an unsafe
// verdict always carries a score of at least 90.
func Evaluate(title, content string) Verdict {
	text := strings.ToLower(title + " " + content)

	if blocked := matchKeywords(text, blockedKeywords); len(blocked) > 0 {
		return Verdict{
			Safe:     false,
			AgeScore: 100,
			Severity: SeverityHigh,
			Reasons:  []string{fmt.Sprintf("blocked topics: %s", strings.Join(blocked, ", "))},
		}
	}

	score := 0
	severity := SeverityLow
	var reasons []string

	if hard := matchKeywords(text, hardNewsKeywords); len(hard) > 0 {
		score += 30
		severity = escalate(severity, SeverityMedium)
		reasons = append(reasons, fmt.Sprintf("hard news topics: %s", strings.Join(hard, ", ")))
	}

	if severe := matchKeywords(text, severityKeywords); len(severe) > 0 {
		score += 15 * len(severe)
		severity = escalate(severity, SeverityHigh)
		reasons = append(reasons, fmt.Sprintf("graphic severity terms: %s", strings.Join(severe, ", ")))
	}

	if unsafe := matchKeywords(text, unsafeKeywords); len(unsafe) > 0 {
		if !hasSafeContext(text) {
			score = clampScore(score + 10*len(unsafe))
			if score < 90 {
				score = 90
			}
			return Verdict{
				Safe:     false,
				AgeScore: score,
				Severity: SeverityHigh,
				Reasons:  append(reasons, fmt.Sprintf("unsafe terms without safe context: %s", strings.Join(unsafe, ", "))),
			}
		}
		score += 10 * len(unsafe)
		severity = escalate(severity, SeverityMedium)
		reasons = append(reasons, fmt.Sprintf("risky terms in safe context: %s", strings.Join(unsafe, ", ")))
	}

	return Verdict{
		Safe:     true,
		AgeScore: clampScore(score),
		Severity: severity,
		Reasons:  reasons,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AgeBucket maps a score to the audience band downstream consumers display.
// The filter itself gates only on the Safe boolean.
func AgeBucket(score int) string {
	switch {
	case score < 60:
		return "kid-friendly"
	case score < 80:
		return "teen"
	default:
		return "adult"
	}
}

// FilterResult reports the outcome of batch screening.
type FilterResult struct {
	Articles      []domain.Article
	FilteredCount int
	SafetyApplied bool
}

// FilterUnsafe evaluates each article and retains only the safe ones.
func FilterUnsafe(articles []domain.Article) FilterResult {
	kept := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if Evaluate(article.Title, article.Content).Safe {
			kept = append(kept, article)
		}
	}

	return FilterResult{
		Articles:      kept,
		FilteredCount: len(articles) - len(kept),
		SafetyApplied: true,
	}
}
