// Package dedup holds the value objects produced by duplicate screening.
package dedup

// Verdict is the final answer for a candidate snippet.
type Verdict string

// Verdict values.
const (
	Unique    Verdict = "UNIQUE"
	Duplicate Verdict = "DUPLICATE"
	Uncertain Verdict = "UNCERTAIN"
)

// IsValid checks if the verdict is one of the supported values.
func (v Verdict) IsValid() bool {
	return v == Unique || v == Duplicate || v == Uncertain
}

// State is a pipeline stage.
type State string

// Pipeline states. Accepted, Rejected, Flagged and ErrorFallback are terminal.
const (
	StateNew               State = "NEW"
	StateSummarized        State = "SUMMARIZED"
	StateCandidatesFetched State = "CANDIDATES_FETCHED"
	StateVerified          State = "VERIFIED"
	StateAccepted          State = "ACCEPTED"
	StateRejected          State = "REJECTED"
	StateFlagged           State = "FLAGGED"
	StateErrorFallback     State = "ERROR_FALLBACK"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateAccepted, StateRejected, StateFlagged, StateErrorFallback:
		return true
	}
	return false
}

// Judgment is the arbiter's answer for one candidate pair.
type Judgment struct {
	Verdict    Verdict
	Confidence float64
	Reason     string
}

// Check records one verified candidate.
type Check struct {
	CandidateID string
	Similarity  float64
	Judgment    Judgment
	// GateFailure is set when the arbiter could not be consulted.
	GateFailure string
}

// Evidence explains how a decision was reached.
type Evidence struct {
	Summary         string
	SummaryFallback bool
	Checks          []Check
	Fallback        bool
	Reason          string
	Trail           []State
}

// Decision is the immutable outcome of screening one snippet.
type Decision struct {
	candidateID string
	verdict     Verdict
	matchedID   string
	confidence  float64
	evidence    Evidence
	state       State
}

// NewDecision creates a decision. matchedID is only kept for Duplicate verdicts.
func NewDecision(candidateID string, verdict Verdict, matchedID string, confidence float64, state State, ev Evidence) Decision {
	if verdict != Duplicate {
		matchedID = ""
	}
	return Decision{
		candidateID: candidateID, verdict: verdict, matchedID: matchedID,
		confidence: confidence, evidence: ev.clone(), state: state,
	}
}

func (e Evidence) clone() Evidence {
	e.Checks = append([]Check(nil), e.Checks...)
	e.Trail = append([]State(nil), e.Trail...)
	return e
}

// CandidateID returns the screened snippet identifier.
func (d *Decision) CandidateID() string { return d.candidateID }

// Verdict returns the final verdict.
func (d *Decision) Verdict() Verdict { return d.verdict }

// MatchedID returns the duplicate's identifier (empty unless Duplicate).
func (d *Decision) MatchedID() string { return d.matchedID }

// Confidence returns the arbiter confidence backing the verdict.
func (d *Decision) Confidence() float64 { return d.confidence }

// Evidence returns a copy of the decision trail.
func (d *Decision) Evidence() Evidence { return d.evidence.clone() }

// State returns the terminal pipeline state.
func (d *Decision) State() State { return d.state }
