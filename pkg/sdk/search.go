package snipdex

import (
	"context"
	"fmt"
	"net/http"

	api "github.com/kailas-cloud/snipdex/internal/transport/chi"
)

// Search runs a ranked search. Identical requests within the server cache
// lifetime return identical hits.
func (c *Client) Search(ctx context.Context, req SearchRequest) (hits []Hit, err error) {
	defer c.track("search")(&err)

	if req.Query == "" {
		return nil, fmt.Errorf("snipdex: query is required: %w", ErrValidation)
	}

	body := api.SearchRequest{
		Query:   req.Query,
		Variant: req.Variant,
		K:       req.K,
		Filters: filterToAPI(req.Filter),
	}
	var resp api.SearchResponse
	if _, err := c.do(ctx, http.MethodPost, "/v1/search", body, &resp); err != nil {
		return nil, err
	}

	hits = make([]Hit, len(resp.Items))
	for i := range resp.Items {
		hits[i] = hitFromAPI(&resp.Items[i])
	}
	return hits, nil
}

// CheckDuplicate screens rawText against stored records without storing it.
// An empty id lets the server assign one.
func (c *Client) CheckDuplicate(ctx context.Context, id, rawText string) (d Decision, err error) {
	defer c.track("check_duplicate")(&err)

	if rawText == "" {
		return Decision{}, fmt.Errorf("snipdex: raw text is required: %w", ErrValidation)
	}

	var resp api.DecisionResponse
	body := api.CheckDuplicateRequest{ID: id, RawText: rawText}
	if _, err := c.do(ctx, http.MethodPost, "/v1/duplicates/check", body, &resp); err != nil {
		return Decision{}, err
	}
	return decisionFromAPI(&resp), nil
}

func filterToAPI(f *Filter) *api.FilterRequest {
	if f == nil {
		return nil
	}
	return &api.FilterRequest{
		Must:    conditionsToAPI(f.Must),
		Should:  conditionsToAPI(f.Should),
		MustNot: conditionsToAPI(f.MustNot),
	}
}

func conditionsToAPI(in []Condition) []api.ConditionRequest {
	if len(in) == 0 {
		return nil
	}
	out := make([]api.ConditionRequest, len(in))
	for i, c := range in {
		out[i] = api.ConditionRequest{Key: c.Key, Match: c.Match}
		if c.Range != nil {
			out[i].Range = &api.RangeRequest{GT: c.Range.GT, GTE: c.Range.GTE, LT: c.Range.LT, LTE: c.Range.LTE}
		}
	}
	return out
}

func hitFromAPI(r *api.ResultResponse) Hit {
	return Hit{
		ID:         r.ID,
		Score:      r.Score,
		Signals:    r.Signals,
		Boost:      r.Boost,
		LocalNorm:  r.LocalNorm,
		Confidence: r.Confidence,
		Summary:    r.Summary,
		RawText:    r.RawText,
		Tags:       r.Tags,
	}
}

func decisionFromAPI(r *api.DecisionResponse) Decision {
	checks := make([]Check, len(r.Evidence.Checks))
	for i, c := range r.Evidence.Checks {
		checks[i] = Check{
			CandidateID: c.CandidateID,
			Similarity:  c.Similarity,
			Verdict:     c.Verdict,
			Confidence:  c.Confidence,
			Reason:      c.Reason,
			GateFailure: c.GateFailure,
		}
	}
	return Decision{
		CandidateID:     r.CandidateID,
		Verdict:         r.Verdict,
		MatchedID:       r.MatchedID,
		Confidence:      r.Confidence,
		State:           r.State,
		Summary:         r.Evidence.Summary,
		SummaryFallback: r.Evidence.SummaryFallback,
		Fallback:        r.Evidence.Fallback,
		Reason:          r.Evidence.Reason,
		Checks:          checks,
		Trail:           r.Evidence.Trail,
	}
}
