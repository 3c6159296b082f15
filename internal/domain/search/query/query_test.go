package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New("  click login button ", "", filter.Expression{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "click login button" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.K() != DefaultK {
		t.Errorf("K() = %d, want %d", q.K(), DefaultK)
	}
	if q.Variant() != "" {
		t.Errorf("Variant() = %q", q.Variant())
	}
	want := []string{"button", "click", "login"}
	if strings.Join(q.Tokens(), ",") != strings.Join(want, ",") {
		t.Errorf("Tokens() = %v, want %v", q.Tokens(), want)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		text string
		k    int
	}{
		{"empty", "", 5},
		{"blank", "   ", 5},
		{"too long", strings.Repeat("a", MaxTextLength+1), 5},
		{"negative k", "q", -1},
		{"k too large", "q", MaxK + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.text, "A", filter.Expression{}, tt.k)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestWithVariant(t *testing.T) {
	q, _ := New("q", "", filter.Expression{}, 3)
	bound := q.WithVariant("B")
	if bound.Variant() != "B" || q.Variant() != "" {
		t.Errorf("WithVariant mutated receiver or failed: %q %q", bound.Variant(), q.Variant())
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Click the LOGIN button; click-through don't --")
	want := []string{"button", "click", "click-through", "don't", "login", "the"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
	if Tokenize("  ") != nil {
		t.Error("blank text must yield nil")
	}
}
