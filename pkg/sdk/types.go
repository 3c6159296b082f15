package snipdex

// Range bounds a numeric field. Nil bounds are open.
type Range struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// Condition is a tag match or a numeric range on one field.
type Condition struct {
	Key   string
	Match string
	Range *Range
}

// Filter is a must/should/must_not expression.
type Filter struct {
	Must    []Condition
	Should  []Condition
	MustNot []Condition
}

// Match is shorthand for an exact tag condition.
func Match(key, value string) Condition {
	return Condition{Key: key, Match: value}
}

// SearchRequest describes one ranked search.
// Empty Variant uses the server default; K=0 uses the server default.
type SearchRequest struct {
	Query   string
	Variant string
	K       int
	Filter  *Filter
}

// Hit is one ranked search result.
type Hit struct {
	ID        string
	Score     float64
	Signals   map[string]float64
	Boost     float64
	LocalNorm float64
	// Confidence is set only when the judge reranked the hit.
	Confidence *float64
	Summary    string
	RawText    string
	Tags       map[string]string
}

// Verdict values.
const (
	VerdictUnique    = "UNIQUE"
	VerdictDuplicate = "DUPLICATE"
	VerdictUncertain = "UNCERTAIN"
)

// Check is one verified candidate in a decision.
type Check struct {
	CandidateID string
	Similarity  float64
	Verdict     string
	Confidence  float64
	Reason      string
	GateFailure string
}

// Decision is the outcome of duplicate screening.
type Decision struct {
	CandidateID     string
	Verdict         string
	MatchedID       string
	Confidence      float64
	State           string
	Summary         string
	SummaryFallback bool
	Fallback        bool
	Reason          string
	Checks          []Check
	Trail           []string
}

// Record is a snippet submitted for ingest or vector recomputation.
type Record struct {
	ID         string
	RawText    string
	Summary    string
	Keywords   []string
	Tags       map[string]string
	Popularity int
}

// IngestStatus is what happened to an ingested record.
type IngestStatus string

// Ingest statuses.
const (
	StatusCommitted IngestStatus = "committed"
	StatusRejected  IngestStatus = "rejected"
	StatusHeld      IngestStatus = "held"
)

// IngestResult carries the stored ID, the status and the screening decision.
type IngestResult struct {
	ID       string
	Status   IngestStatus
	Decision Decision
}

// VectorsResult describes freshly recomputed vectors.
type VectorsResult struct {
	ID          string
	Fingerprint string
	Dimensions  int
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component → "ok"/"error"
}
