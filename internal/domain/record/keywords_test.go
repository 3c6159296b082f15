package record

import (
	"strings"
	"testing"
)

func TestExtractKeywords_RanksBigramsAndUnigrams(t *testing.T) {
	got := ExtractKeywords("Click the login button. Click the login button again to retry.", 0)
	if len(got) == 0 {
		t.Fatal("expected keywords")
	}
	// "click login" and "login button" occur twice: 2 * 1.4 beats unigram count 2.
	if got[0] != "click login" || got[1] != "login button" {
		t.Errorf("top keywords = %v", got[:2])
	}
	for _, k := range got {
		if k == "the" || k == "to" {
			t.Errorf("stopword %q extracted", k)
		}
	}
}

func TestExtractKeywords_DropsShortTokens(t *testing.T) {
	got := ExtractKeywords("go db io retry", 0)
	if strings.Join(got, ",") != "retry" {
		t.Errorf("got %v, want [retry]", got)
	}
}

func TestExtractKeywords_Limit(t *testing.T) {
	got := ExtractKeywords("alpha bravo charlie delta echo foxtrot golf hotel india juliet", 3)
	if len(got) != 3 {
		t.Fatalf("got %d keywords, want 3", len(got))
	}
	if len(ExtractKeywords(strings.Repeat("word ", 3)+"alpha bravo charlie delta echo foxtrot golf hotel india", 0)) != MaxExtractedKeywords {
		t.Errorf("default limit not applied")
	}
}

func TestExtractKeywords_FallsBackToShortTokens(t *testing.T) {
	got := ExtractKeywords("go db go", 0)
	if strings.Join(got, ",") != "go,db" {
		t.Errorf("got %v, want [go db]", got)
	}
	if got := ExtractKeywords("the and of", 0); len(got) != 0 {
		t.Errorf("got %v for stopwords only", got)
	}
	if got := ExtractKeywords("", 0); got != nil {
		t.Errorf("got %v for empty text", got)
	}
}
