package judge

import "fmt"

// Kind names an external judge operation.
type Kind string

const (
	KindSummarize Kind = "summarize"
	KindVerify    Kind = "verify_duplicate"
	KindRerank    Kind = "rerank"
)

// Item is one ranked result shown to the judge for relevance scoring.
type Item struct {
	ID       string
	Summary  string
	RawText  string
	Keywords []string
}

// Scores maps result ID to a judge confidence in [0,1].
// IDs the judge did not mention are absent.
type Scores map[string]float64

// UnusableAnswerError reports a judge reply that could not be interpreted.
type UnusableAnswerError struct {
	Kind   Kind
	Answer string
}

func (e *UnusableAnswerError) Error() string {
	answer := e.Answer
	if len(answer) > 80 {
		answer = answer[:80] + "..."
	}
	return fmt.Sprintf("unusable %s answer: %q", e.Kind, answer)
}
