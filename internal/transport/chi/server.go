package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/logger"
	healthuc "github.com/kailas-cloud/snipdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/snipdex/internal/usecase/ingest"
)

// Searcher runs ranked searches.
type Searcher interface {
	Search(ctx context.Context, q *query.Query) ([]result.Result, error)
}

// Screener screens snippets for duplicates.
type Screener interface {
	Check(ctx context.Context, candidateID, rawText string) (domdedup.Decision, error)
}

// Ingester screens and stores snippets.
type Ingester interface {
	Ingest(ctx context.Context, req *ingestuc.Request) (ingestuc.Outcome, error)
}

// Recomputer derives fresh vectors for a record.
type Recomputer interface {
	Recompute(ctx context.Context, rec *record.Record) (record.Record, error)
}

// Saver persists a record.
type Saver interface {
	Save(ctx context.Context, rec *record.Record) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the snipdex HTTP API.
type Server struct {
	search        Searcher
	screener      Screener
	ingest        Ingester
	vectors       Recomputer
	saver         Saver
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	screener Screener,
	ingest Ingester,
	vectors Recomputer,
	saver Saver,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		screener: screener,
		ingest:   ingest,
		vectors:  vectors,
		saver:    saver,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrConfiguration, http.StatusBadRequest, codeConfiguration),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInconsistentState, http.StatusConflict, codeInconsistentState),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEncoding, http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrRetrieval, http.StatusServiceUnavailable, codeRetrievalFailed),
		sentinelHandler(domain.ErrGate, http.StatusServiceUnavailable, codeJudgeUnavailable),
	}
	return s
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}

	filters, err := req.Filters.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	q, err := query.New(req.Query, req.Variant, filters, req.K)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	results, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]ResultResponse, len(results))
	for i := range results {
		items[i] = resultToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Count: len(items)})
}

// CheckDuplicate handles POST /v1/duplicates/check.
func (s *Server) CheckDuplicate(w http.ResponseWriter, r *http.Request) {
	var req CheckDuplicateRequest
	if !decode(w, r, &req) {
		return
	}

	d, err := s.screener.Check(r.Context(), req.ID, req.RawText)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionToResponse(&d))
}

// IngestRecord handles POST /v1/records.
func (s *Server) IngestRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := s.ingest.Ingest(r.Context(), &ingestuc.Request{
		ID:         req.ID,
		RawText:    req.RawText,
		Summary:    req.Summary,
		Keywords:   req.Keywords,
		Tags:       req.Tags,
		Popularity: req.Popularity,
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	switch out.Status {
	case ingestuc.StatusCommitted:
		status = http.StatusCreated
	case ingestuc.StatusRejected:
		status = http.StatusConflict
	case ingestuc.StatusHeld:
		status = http.StatusAccepted
	}
	writeJSON(w, status, IngestResponse{
		ID:       out.ID,
		Status:   string(out.Status),
		Decision: decisionToResponse(&out.Decision),
	})
}

// RecomputeVectors handles POST /v1/records/vectors: the record is rebuilt
// from the submitted sources, its vectors recomputed and the result saved.
func (s *Server) RecomputeVectors(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if !decode(w, r, &req) {
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	fresh, err := s.vectors.Recompute(r.Context(), &rec)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	if err := s.saver.Save(r.Context(), &fresh); err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, VectorsResponse{
		ID:          fresh.ID(),
		Fingerprint: fresh.Fingerprint(),
		Dimensions:  len(fresh.Vectors().Main),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
