// Package snipdex provides a Go client for the snipdex HTTP API: ranked
// snippet search, duplicate screening, ingest and vector recomputation.
//
//	client, _ := snipdex.New("http://localhost:8080",
//	    snipdex.WithTimeout(10*time.Second),
//	)
//	hits, _ := client.Search(ctx, snipdex.SearchRequest{
//	    Query:   "retry with exponential backoff",
//	    Variant: "B",
//	    K:       5,
//	})
//
//	res, err := client.Ingest(ctx, snipdex.Record{RawText: code})
//	if errors.Is(err, snipdex.ErrRateLimited) { ... }
//	if res.Status == snipdex.StatusRejected { ... }
package snipdex
