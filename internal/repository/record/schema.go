package record

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/snipdex/internal/db"
)

// Reserved hash/payload field names. Tag fields use their own names.
const (
	FieldRawText     = "__raw"
	FieldSummary     = "__summary"
	FieldKeywords    = "__keywords"
	FieldFingerprint = "__fingerprint"
	FieldPopularity  = "__popularity"
	FieldCreatedAt   = "__created_at"
	FieldUpdatedAt   = "__updated_at"

	VecSummary = "__summary_vec"
	VecRaw     = "__raw_vec"
	VecDoc     = "__doc_vec"
	VecMain    = "__main_vec"
)

var vectorFields = []string{VecSummary, VecRaw, VecDoc, VecMain}

// Schema describes where and how records are indexed.
type Schema struct {
	Index     string
	Prefix    string
	Dimension int
	// TagFields are filterable tag names declared in the index.
	TagFields []string
}

// Key returns the storage key for a record ID.
func (s Schema) Key(id string) string { return s.Prefix + id }

// ID strips the storage prefix from a key.
func (s Schema) ID(key string) string { return strings.TrimPrefix(key, s.Prefix) }

// Definition builds the index definition: text sources, keyword tags,
// popularity for range filters, configured tag fields and the four vectors.
func (s Schema) Definition() (*db.IndexDefinition, error) {
	b := db.NewIndex(s.Index).
		Prefix(s.Prefix).
		Text(FieldSummary).
		Tag(FieldKeywords, ",").
		Numeric(FieldPopularity).
		Numeric(FieldUpdatedAt)
	for _, t := range s.TagFields {
		if IsReserved(t) {
			return nil, fmt.Errorf("tag field %q uses a reserved name", t)
		}
		b = b.Tag(t, "")
	}
	b = b.VectorHNSW(VecMain, s.Dimension, db.DistanceCosine, 16, 200)
	for _, v := range []string{VecSummary, VecRaw, VecDoc} {
		b = b.VectorFlat(v, s.Dimension, db.DistanceCosine)
	}
	return b.Build()
}

// IsReserved reports whether name collides with a record field.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, "__")
}
