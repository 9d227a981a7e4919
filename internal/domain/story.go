package domain

// ReadingLevel is one of the fixed audience bands for generated stories.
type ReadingLevel string

const (
	LevelPreschool       ReadingLevel = "preschool"
	LevelEarlyElementary ReadingLevel = "early-elementary"
	LevelElementary      ReadingLevel = "elementary"
)

// ParseReadingLevel validates a raw string against the known levels.
func ParseReadingLevel(raw string) (ReadingLevel, bool) {
	switch ReadingLevel(raw) {
	case LevelPreschool, LevelEarlyElementary, LevelElementary:
		return ReadingLevel(raw), true
	}
	return "", false
}

// WordRange is the closed word-count interval a story must land in.
type WordRange struct {
	Min int
	Max int
}

var wordRanges = map[ReadingLevel]WordRange{
	LevelPreschool:       {Min: 60, Max: 140},
	LevelEarlyElementary: {Min: 120, Max: 220},
	LevelElementary:      {Min: 180, Max: 320},
}

// WordRange returns the word-count contract for the level. Unknown levels get
// the elementary range.
func (l ReadingLevel) WordRange() WordRange {
	if r, ok := wordRanges[l]; ok {
		return r
	}
	return wordRanges[LevelElementary]
}

// StoryRequest is the body of a story generation call.
type StoryRequest struct {
	ArticleText  string       `json:"articleText"`
	ReadingLevel ReadingLevel `json:"readingLevel"`
}

// StoryMeta carries generation metadata alongside the story.
type StoryMeta struct {
	ReadingLevel ReadingLevel `json:"readingLevel"`
	WordCount    int          `json:"wordCount"`
}

// StoryResult is a validated generation outcome: the story itself plus exactly
// two discussion questions.
type StoryResult struct {
	Story     string    `json:"story"`
	Questions []string  `json:"questions"`
	Meta      StoryMeta `json:"meta"`
}
