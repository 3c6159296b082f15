package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxRawTextSize is the maximum snippet size in bytes.
const MaxRawTextSize = 163840 // 160KB

// Vectors are the embeddings derived from a record's summary and raw text.
type Vectors struct {
	Summary []float32
	Raw     []float32
	Doc     []float32
	Main    []float32
}

// IsEmpty reports whether no main vector has been computed.
func (v Vectors) IsEmpty() bool { return len(v.Main) == 0 }

// Record is an indexed snippet (immutable value object).
// The fingerprint identifies the summary/raw text its vectors were computed from.
type Record struct {
	id          string
	rawText     string
	summary     string
	keywords    []string
	tags        map[string]string
	vectors     Vectors
	fingerprint string
	popularity  int
	createdAt   time.Time
	updatedAt   time.Time
}

// New validates and creates a Record without vectors.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Raw text: non-blank, max 160KB.
func New(id, rawText, summary string, keywords []string, tags map[string]string, now time.Time) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if len(id) > 256 {
		return Record{}, fmt.Errorf("record ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Record{}, fmt.Errorf("record ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(rawText) == "" {
		return Record{}, fmt.Errorf("raw text is required")
	}
	if len(rawText) > MaxRawTextSize {
		return Record{}, fmt.Errorf("raw text too large (max %d bytes)", MaxRawTextSize)
	}

	return Record{
		id:        id,
		rawText:   rawText,
		summary:   summary,
		keywords:  normalizeKeywords(keywords),
		tags:      cloneStringMap(tags),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Fields is the full stored state used to rehydrate a Record.
type Fields struct {
	ID          string
	RawText     string
	Summary     string
	Keywords    []string
	Tags        map[string]string
	Vectors     Vectors
	Fingerprint string
	Popularity  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(f Fields) Record {
	return Record{
		id: f.ID, rawText: f.RawText, summary: f.Summary,
		keywords: f.Keywords, tags: f.Tags, vectors: f.Vectors,
		fingerprint: f.Fingerprint, popularity: f.Popularity,
		createdAt: f.CreatedAt, updatedAt: f.UpdatedAt,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// RawText returns the snippet source text.
func (r *Record) RawText() string { return r.rawText }

// Summary returns the short natural-language summary.
func (r *Record) Summary() string { return r.summary }

// Keywords returns the lower-cased keyword set.
func (r *Record) Keywords() []string { return r.keywords }

// Tags returns the filterable tag fields.
func (r *Record) Tags() map[string]string { return r.tags }

// Vectors returns the computed embeddings.
func (r *Record) Vectors() Vectors { return r.vectors }

// Fingerprint returns the source fingerprint the vectors were computed from.
func (r *Record) Fingerprint() string { return r.fingerprint }

// Popularity returns the usage counter.
func (r *Record) Popularity() int { return r.popularity }

// CreatedAt returns the creation time.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last modification time.
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// DocText is the combined text used for the document vector.
func (r *Record) DocText() string {
	return strings.TrimSpace(r.summary + " " + r.rawText)
}

// SourceFingerprint hashes the current summary and raw text.
func (r *Record) SourceFingerprint() string {
	return Fingerprint(r.summary, r.rawText)
}

// IsStale reports whether the vectors no longer match the current sources.
func (r *Record) IsStale() bool {
	return r.vectors.IsEmpty() || r.fingerprint != r.SourceFingerprint()
}

// WithSummary returns a copy with a new summary. Vectors are left as they are.
func (r *Record) WithSummary(summary string) Record {
	c := *r
	c.summary = summary
	return c
}

// WithRawText returns a copy with new raw text. Vectors are left as they are.
func (r *Record) WithRawText(rawText string) Record {
	c := *r
	c.rawText = rawText
	return c
}

// WithKeywords returns a copy with a normalized keyword set.
func (r *Record) WithKeywords(keywords []string) Record {
	c := *r
	c.keywords = normalizeKeywords(keywords)
	return c
}

// WithVectors returns a copy carrying vectors computed from the given fingerprint.
func (r *Record) WithVectors(v Vectors, fingerprint string) Record {
	c := *r
	c.vectors = v
	c.fingerprint = fingerprint
	return c
}

// WithPopularity returns a copy with a new usage counter.
func (r *Record) WithPopularity(n int) Record {
	c := *r
	c.popularity = n
	return c
}

// Fingerprint returns the SHA-256 of summary and raw text, separated by NUL.
func Fingerprint(summary, rawText string) string {
	h := sha256.New()
	h.Write([]byte(summary))
	h.Write([]byte{0})
	h.Write([]byte(rawText))
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Neighbor is a retrieved record with its cosine similarity (in [-1,1]) to the probe vector.
type Neighbor struct {
	ID         string
	Similarity float64
	Record     Record
}
