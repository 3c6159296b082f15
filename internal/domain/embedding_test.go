package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result BatchEmbeddingResult
	err    error
	got    []string
}

func (s *stubEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.got = texts
	return s.result, s.err
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: BatchEmbeddingResult{Embeddings: [][]float32{{0.1}, {0.2}}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	res, err := emb.BatchEmbed(context.Background(), []string{"click login", "open page"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.got) != 2 || inner.got[0] != "query: click login" || inner.got[1] != "query: open page" {
		t.Errorf("expected prefixed texts, got %q", inner.got)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
}

func TestInstructionEmbedder_PropagatesError(t *testing.T) {
	inner := &stubEmbedder{err: errors.New("provider down")}
	emb := NewInstructionEmbedder(inner, "passage: ")

	if _, err := emb.BatchEmbed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGateError_Unwrap(t *testing.T) {
	cause := errors.New("429")
	err := error(&GateError{Kind: GateRateLimited, Op: "rerank", Attempts: 3, Err: cause})

	if !errors.Is(err, ErrGate) {
		t.Error("expected errors.Is(err, ErrGate)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}

	var ge *GateError
	if !errors.As(err, &ge) || ge.Kind != GateRateLimited {
		t.Errorf("expected GateRateLimited, got %+v", ge)
	}
}

func TestOutcome_Arms(t *testing.T) {
	ok := Succeeded("summary")
	if v, present := ok.Value(); !present || v != "summary" {
		t.Errorf("expected value, got %q present=%v", v, present)
	}
	if _, err := ok.Result(); err != nil {
		t.Errorf("expected nil error interface, got %v", err)
	}

	failed := Failed[string](&GateError{Kind: GateTimeout, Op: "summarize"})
	if failed.OK() {
		t.Error("expected failed outcome")
	}
	if _, err := failed.Result(); !errors.Is(err, ErrGate) {
		t.Errorf("expected gate error, got %v", err)
	}

	if Failed[int](nil).Err().Kind != GateInvalid {
		t.Error("nil gate error must normalize to invalid")
	}
}
