package safety

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storyweaver/internal/domain"
)

func TestEvaluateBlockedTopics(t *testing.T) {
	t.Parallel()

	v := Evaluate("Report on domestic violence shelters", "The community helps survivors.")
	require.False(t, v.Safe)
	require.Equal(t, 100, v.AgeScore)
	require.Equal(t, SeverityHigh, v.Severity)
	require.Len(t, v.Reasons, 1)
	require.Contains(t, v.Reasons[0], "domestic violence")
}

func TestEvaluateHardNews(t *testing.T) {
	t.Parallel()

	v := Evaluate("Diplomacy talks resume between neighbors", "Leaders met to discuss trade.")
	require.True(t, v.Safe)
	require.Equal(t, 30, v.AgeScore)
	require.Equal(t, SeverityMedium, v.Severity)
}

func TestEvaluateSeverityCompounds(t *testing.T) {
	t.Parallel()

	single := Evaluate("Casualties reported", "The report covers casualties only.")
	double := Evaluate("Casualties and a massacre reported", "The report covers casualties and a massacre.")

	require.True(t, single.Safe)
	require.Equal(t, 15, single.AgeScore)
	require.Equal(t, SeverityHigh, single.Severity)

	require.True(t, double.Safe)
	require.Equal(t, 30, double.AgeScore)
	require.GreaterOrEqual(t, double.AgeScore, single.AgeScore, "score never decreases when more terms match")
}

func TestEvaluateUnsafeWithoutContext(t *testing.T) {
	t.Parallel()

	v := Evaluate("A gun was found", "A gun was found at the playground.")
	require.False(t, v.Safe)
	require.GreaterOrEqual(t, v.AgeScore, 90, "unsafe verdicts carry a score of at least 90")
	require.LessOrEqual(t, v.AgeScore, 100)
	require.Equal(t, SeverityHigh, v.Severity)
}

func TestEvaluateUnsafeWithSafeContext(t *testing.T) {
	t.Parallel()

	v := Evaluate("News about a fight", "This news article covers a fight between rival mascots.")
	require.True(t, v.Safe)
	require.Equal(t, 10, v.AgeScore)
	require.Equal(t, SeverityMedium, v.Severity)
}

func TestEvaluateCleanText(t *testing.T) {
	t.Parallel()

	v := Evaluate("Local bakery donates bread", "The bakery gave loaves to the shelter.")
	require.True(t, v.Safe)
	require.Equal(t, 0, v.AgeScore)
	require.Equal(t, SeverityLow, v.Severity)
	require.Empty(t, v.Reasons)
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	title := "War coverage with casualties"
	content := "The report describes the conflict."

	first := Evaluate(title, content)
	second := Evaluate(title, content)
	require.Equal(t, first, second)
}

func TestAgeBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  string
	}{
		{0, "kid-friendly"},
		{59, "kid-friendly"},
		{60, "teen"},
		{79, "teen"},
		{80, "adult"},
		{100, "adult"},
	}

	for _, tt := range tests {
		if got := AgeBucket(tt.score); got != tt.want {
			t.Errorf("AgeBucket(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestFilterUnsafe(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "Local bakery donates bread", Content: "The bakery gave loaves away."},
		{Title: "A gun was found", Content: "A gun was found at the playground."},
		{Title: "Science fair winners announced", Content: "Students presented their projects."},
	}

	result := FilterUnsafe(articles)
	require.True(t, result.SafetyApplied)
	require.Equal(t, 1, result.FilteredCount)
	require.Len(t, result.Articles, 2)
	require.Equal(t, "Local bakery donates bread", result.Articles[0].Title)
}

func TestFilterUnsafeEmpty(t *testing.T) {
	t.Parallel()

	result := FilterUnsafe(nil)
	require.True(t, result.SafetyApplied)
	require.Zero(t, result.FilteredCount)
	require.Empty(t, result.Articles)
}
