package chi

import (
	"fmt"
	"time"

	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
)

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Variant string         `json:"variant,omitempty"`
	K       int            `json:"k,omitempty"`
	Filters *FilterRequest `json:"filters,omitempty"`
}

// FilterRequest is a must/should/must_not filter expression.
type FilterRequest struct {
	Must    []ConditionRequest `json:"must,omitempty"`
	Should  []ConditionRequest `json:"should,omitempty"`
	MustNot []ConditionRequest `json:"must_not,omitempty"`
}

// ConditionRequest is a tag match or a numeric range on one field.
type ConditionRequest struct {
	Key   string        `json:"key"`
	Match string        `json:"match,omitempty"`
	Range *RangeRequest `json:"range,omitempty"`
}

// RangeRequest bounds a numeric field.
type RangeRequest struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// ResultResponse is one ranked hit.
type ResultResponse struct {
	ID         string             `json:"id"`
	Score      float64            `json:"score"`
	Signals    map[string]float64 `json:"signals"`
	Boost      float64            `json:"boost"`
	LocalNorm  float64            `json:"local_norm"`
	Confidence *float64           `json:"confidence,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	RawText    string             `json:"raw_text"`
	Tags       map[string]string  `json:"tags,omitempty"`
}

// SearchResponse is the body returned by POST /v1/search.
type SearchResponse struct {
	Items []ResultResponse `json:"items"`
	Count int              `json:"count"`
}

// CheckDuplicateRequest is the body of POST /v1/duplicates/check.
type CheckDuplicateRequest struct {
	ID      string `json:"id,omitempty"`
	RawText string `json:"raw_text"`
}

// CheckResponse is one verified candidate.
type CheckResponse struct {
	CandidateID string  `json:"candidate_id"`
	Similarity  float64 `json:"similarity"`
	Verdict     string  `json:"verdict,omitempty"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason,omitempty"`
	GateFailure string  `json:"gate_failure,omitempty"`
}

// EvidenceResponse explains a decision.
type EvidenceResponse struct {
	Summary         string          `json:"summary,omitempty"`
	SummaryFallback bool            `json:"summary_fallback"`
	Fallback        bool            `json:"fallback"`
	Reason          string          `json:"reason,omitempty"`
	Checks          []CheckResponse `json:"checks"`
	Trail           []string        `json:"trail"`
}

// DecisionResponse is a dedup decision.
type DecisionResponse struct {
	CandidateID string           `json:"candidate_id,omitempty"`
	Verdict     string           `json:"verdict"`
	MatchedID   string           `json:"matched_id,omitempty"`
	Confidence  float64          `json:"confidence"`
	State       string           `json:"state"`
	Evidence    EvidenceResponse `json:"evidence"`
}

// RecordRequest is the body of POST /v1/records and POST /v1/records/vectors.
type RecordRequest struct {
	ID         string            `json:"id,omitempty"`
	RawText    string            `json:"raw_text"`
	Summary    string            `json:"summary,omitempty"`
	Keywords   []string          `json:"keywords,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
	Popularity int               `json:"popularity,omitempty"`
}

// IngestResponse is the body returned by POST /v1/records.
type IngestResponse struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	Decision DecisionResponse `json:"decision"`
}

// VectorsResponse is the body returned by POST /v1/records/vectors.
type VectorsResponse struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Dimensions  int    `json:"dimensions"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (f *FilterRequest) toDomain() (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}
	must, err := conditionsToDomain(f.Must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("must: %w", err)
	}
	should, err := conditionsToDomain(f.Should)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("should: %w", err)
	}
	mustNot, err := conditionsToDomain(f.MustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("must_not: %w", err)
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build filter: %w", err)
	}
	return expr, nil
}

func conditionsToDomain(in []ConditionRequest) ([]filter.Condition, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(in))
	for _, c := range in {
		cond, err := conditionToDomain(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionToDomain(c ConditionRequest) (filter.Condition, error) {
	if c.Range == nil {
		cond, err := filter.NewMatch(c.Key, c.Match)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("match condition: %w", err)
		}
		return cond, nil
	}
	if c.Match != "" {
		return filter.Condition{}, fmt.Errorf("condition on %q has both match and range", c.Key)
	}
	r, err := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("range on %q: %w", c.Key, err)
	}
	cond, err := filter.NewRange(c.Key, r)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("range condition: %w", err)
	}
	return cond, nil
}

func (r *RecordRequest) toRecord() (record.Record, error) {
	rec, err := record.New(r.ID, r.RawText, r.Summary, r.Keywords, r.Tags, time.Now())
	if err != nil {
		return record.Record{}, fmt.Errorf("build record: %w", err)
	}
	if r.Popularity > 0 {
		rec = rec.WithPopularity(r.Popularity)
	}
	return rec, nil
}

func resultToResponse(r *result.Result) ResultResponse {
	signals := make(map[string]float64, len(r.Signals()))
	for n, v := range r.Signals() {
		signals[string(n)] = v
	}
	resp := ResultResponse{
		ID:        r.ID(),
		Score:     r.Score(),
		Signals:   signals,
		Boost:     r.Boost(),
		LocalNorm: r.LocalNorm(),
		Summary:   r.Summary(),
		RawText:   r.RawText(),
		Tags:      r.Tags(),
	}
	if conf, ok := r.Confidence(); ok {
		resp.Confidence = &conf
	}
	return resp
}

func decisionToResponse(d *domdedup.Decision) DecisionResponse {
	ev := d.Evidence()
	checks := make([]CheckResponse, len(ev.Checks))
	for i, c := range ev.Checks {
		checks[i] = CheckResponse{
			CandidateID: c.CandidateID,
			Similarity:  c.Similarity,
			Verdict:     string(c.Judgment.Verdict),
			Confidence:  c.Judgment.Confidence,
			Reason:      c.Judgment.Reason,
			GateFailure: c.GateFailure,
		}
	}
	trail := make([]string, len(ev.Trail))
	for i, s := range ev.Trail {
		trail[i] = string(s)
	}
	return DecisionResponse{
		CandidateID: d.CandidateID(),
		Verdict:     string(d.Verdict()),
		MatchedID:   d.MatchedID(),
		Confidence:  d.Confidence(),
		State:       string(d.State()),
		Evidence: EvidenceResponse{
			Summary:         ev.Summary,
			SummaryFallback: ev.SummaryFallback,
			Fallback:        ev.Fallback,
			Reason:          ev.Reason,
			Checks:          checks,
			Trail:           trail,
		},
	}
}
