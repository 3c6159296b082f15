package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
)

type searchHit struct {
	ID         string             `json:"id"`
	Score      float64            `json:"score"`
	Signals    map[string]float64 `json:"signals"`
	Confidence *float64           `json:"confidence,omitempty"`
	Summary    string             `json:"summary"`
}

// NewSearchCmd constructs the `snipdex search` command, which runs one ranked
// search and prints the results as JSON.
func NewSearchCmd() *cobra.Command {
	var (
		variantName string
		k           int
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run a ranked search against the snippet index",
		Long: `Run a ranked search and print the top results as JSON.

Examples:
  snipdex search "retry with exponential backoff"
  snipdex search --variant A --k 10 "parse yaml config"
  snipdex search --tag language=go "http middleware"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filters, err := tagFilters(tags)
			if err != nil {
				return err
			}
			q, err := query.New(strings.Join(args, " "), variantName, filters, k)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.search.Search(ctx, &q)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			hits := make([]searchHit, 0, len(results))
			for i := range results {
				r := &results[i]
				h := searchHit{ID: r.ID(), Score: r.Score(), Summary: r.Summary(), Signals: map[string]float64{}}
				for name, v := range r.Signals() {
					h.Signals[string(name)] = v
				}
				if c, ok := r.Confidence(); ok {
					h.Confidence = &c
				}
				hits = append(hits, h)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(hits) //nolint:wrapcheck // CLI entry point
		},
	}

	cmd.Flags().StringVar(&variantName, "variant", "", "Ranking variant (default: ranking.default_variant)")
	cmd.Flags().IntVar(&k, "k", 0, fmt.Sprintf("Number of results (default %d, max %d)", query.DefaultK, query.MaxK))
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag filter key=value, repeatable")

	return cmd
}

func tagFilters(tags []string) (filter.Expression, error) {
	if len(tags) == 0 {
		return filter.Expression{}, nil
	}
	must := make([]filter.Condition, 0, len(tags))
	for _, t := range tags {
		key, value, ok := strings.Cut(t, "=")
		if !ok {
			return filter.Expression{}, fmt.Errorf("tag %q: expected key=value", t)
		}
		c, err := filter.NewMatch(key, value)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("tag %q: %w", t, err)
		}
		must = append(must, c)
	}
	return filter.NewExpression(must, nil, nil)
}
