package snipdex

import (
	"context"
	"fmt"
	"net/http"

	api "github.com/kailas-cloud/snipdex/internal/transport/chi"
)

// Ingest screens rec for duplicates and stores it when the server policy allows.
// A rejected or held record is not an error: inspect Status.
func (c *Client) Ingest(ctx context.Context, rec Record) (res IngestResult, err error) {
	defer c.track("ingest")(&err)

	if rec.RawText == "" {
		return IngestResult{}, fmt.Errorf("snipdex: raw text is required: %w", ErrValidation)
	}

	var resp api.IngestResponse
	// 409 carries the rejecting decision, not an error body.
	if _, err := c.do(ctx, http.MethodPost, "/v1/records", recordToAPI(&rec), &resp, http.StatusConflict); err != nil {
		return IngestResult{}, err
	}
	return IngestResult{
		ID:       resp.ID,
		Status:   IngestStatus(resp.Status),
		Decision: decisionFromAPI(&resp.Decision),
	}, nil
}

// RecomputeVectors rebuilds and stores the vectors of rec from its sources.
func (c *Client) RecomputeVectors(ctx context.Context, rec Record) (res VectorsResult, err error) {
	defer c.track("recompute_vectors")(&err)

	if rec.ID == "" {
		return VectorsResult{}, fmt.Errorf("snipdex: record id is required: %w", ErrValidation)
	}

	var resp api.VectorsResponse
	if _, err := c.do(ctx, http.MethodPost, "/v1/records/vectors", recordToAPI(&rec), &resp); err != nil {
		return VectorsResult{}, err
	}
	return VectorsResult{ID: resp.ID, Fingerprint: resp.Fingerprint, Dimensions: resp.Dimensions}, nil
}

func recordToAPI(r *Record) api.RecordRequest {
	return api.RecordRequest{
		ID:         r.ID,
		RawText:    r.RawText,
		Summary:    r.Summary,
		Keywords:   r.Keywords,
		Tags:       r.Tags,
		Popularity: r.Popularity,
	}
}
