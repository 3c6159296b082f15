package dedup

import "testing"

func TestNewDecision_DropsMatchedIDUnlessDuplicate(t *testing.T) {
	d := NewDecision("c", Unique, "m", 0, StateAccepted, Evidence{})
	if d.MatchedID() != "" {
		t.Errorf("MatchedID() = %q, want empty", d.MatchedID())
	}

	d = NewDecision("c", Duplicate, "m", 0.9, StateRejected, Evidence{})
	if d.MatchedID() != "m" {
		t.Errorf("MatchedID() = %q, want m", d.MatchedID())
	}
}

func TestNewDecision_CopiesEvidence(t *testing.T) {
	checks := []Check{{CandidateID: "x"}}
	d := NewDecision("c", Uncertain, "", 0, StateFlagged, Evidence{Checks: checks})
	checks[0].CandidateID = "mutated"
	if d.Evidence().Checks[0].CandidateID != "x" {
		t.Error("evidence shares backing array with caller")
	}
}

func TestDecision_EvidenceReturnsCopies(t *testing.T) {
	d := NewDecision("c", Duplicate, "m", 0.9, StateRejected, Evidence{
		Checks: []Check{{CandidateID: "m", Similarity: 0.95}},
		Trail:  []State{StateNew, StateRejected},
	})

	ev := d.Evidence()
	ev.Checks[0].CandidateID = "mutated"
	ev.Trail[1] = StateAccepted

	again := d.Evidence()
	if again.Checks[0].CandidateID != "m" {
		t.Errorf("checks mutated through Evidence(): %+v", again.Checks)
	}
	if again.Trail[1] != StateRejected {
		t.Errorf("trail mutated through Evidence(): %v", again.Trail)
	}
}

func TestState_IsTerminal(t *testing.T) {
	for _, s := range []State{StateAccepted, StateRejected, StateFlagged, StateErrorFallback} {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
	for _, s := range []State{StateNew, StateSummarized, StateCandidatesFetched, StateVerified} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}

func TestVerdict_IsValid(t *testing.T) {
	if !Unique.IsValid() || Verdict("MAYBE").IsValid() {
		t.Error("IsValid mismatch")
	}
}
