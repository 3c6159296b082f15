package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/snipdex/internal/db"
	domrec "github.com/kailas-cloud/snipdex/internal/domain/record"
)

// ToPoint converts a domain Record into a storage point.
func ToPoint(s Schema, rec *domrec.Record) *db.Point {
	fields := make(map[string]string, 4+len(rec.Tags()))
	fields[FieldRawText] = rec.RawText()
	fields[FieldSummary] = rec.Summary()
	fields[FieldKeywords] = strings.Join(rec.Keywords(), ",")
	fields[FieldFingerprint] = rec.Fingerprint()
	for k, v := range rec.Tags() {
		fields[k] = v
	}

	v := rec.Vectors()
	vectors := make(map[string][]float32, 4)
	for name, vec := range map[string][]float32{
		VecSummary: v.Summary, VecRaw: v.Raw, VecDoc: v.Doc, VecMain: v.Main,
	} {
		if len(vec) > 0 {
			vectors[name] = vec
		}
	}

	return &db.Point{
		Key:    s.Key(rec.ID()),
		Fields: fields,
		Numerics: map[string]float64{
			FieldPopularity: float64(rec.Popularity()),
			FieldCreatedAt:  float64(rec.CreatedAt().Unix()),
			FieldUpdatedAt:  float64(rec.UpdatedAt().Unix()),
		},
		Vectors: vectors,
	}
}

// FromEntry rehydrates a Record from a search hit.
func FromEntry(s Schema, e *db.SearchEntry) (domrec.Record, error) {
	f := domrec.Fields{ID: s.ID(e.Key)}
	tags := make(map[string]string)

	for k, v := range e.Fields {
		switch k {
		case FieldRawText:
			f.RawText = v
		case FieldSummary:
			f.Summary = v
		case FieldKeywords:
			if v != "" {
				f.Keywords = strings.Split(v, ",")
			}
		case FieldFingerprint:
			f.Fingerprint = v
		case FieldPopularity:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return domrec.Record{}, fmt.Errorf("parse %s of %s: %w", k, f.ID, err)
			}
			f.Popularity = int(n)
		case FieldCreatedAt:
			f.CreatedAt = parseUnix(v)
		case FieldUpdatedAt:
			f.UpdatedAt = parseUnix(v)
		default:
			if !IsReserved(k) {
				tags[k] = v
			}
		}
	}
	if len(tags) > 0 {
		f.Tags = tags
	}

	f.Vectors = domrec.Vectors{
		Summary: e.Vectors[VecSummary],
		Raw:     e.Vectors[VecRaw],
		Doc:     e.Vectors[VecDoc],
		Main:    e.Vectors[VecMain],
	}

	return domrec.Reconstruct(f), nil
}

func parseUnix(v string) time.Time {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(n), 0).UTC()
}
