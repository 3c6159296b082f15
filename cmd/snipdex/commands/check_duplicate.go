package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type checkOutput struct {
	CandidateID string   `json:"candidate_id"`
	Verdict     string   `json:"verdict"`
	MatchedID   string   `json:"matched_id,omitempty"`
	Confidence  float64  `json:"confidence"`
	State       string   `json:"state"`
	Summary     string   `json:"summary"`
	Reason      string   `json:"reason,omitempty"`
	Trail       []string `json:"trail"`
}

// NewCheckDuplicateCmd constructs the `snipdex check-duplicate` command, which
// screens a snippet against the index without storing it.
func NewCheckDuplicateCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "check-duplicate [text]",
		Short: "Screen a snippet for near-duplicates without storing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if id == "" {
				id = uuid.NewString()
			}

			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.dedup.Check(ctx, id, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("check duplicate: %w", err)
			}

			ev := d.Evidence()
			out := checkOutput{
				CandidateID: d.CandidateID(),
				Verdict:     string(d.Verdict()),
				MatchedID:   d.MatchedID(),
				Confidence:  d.Confidence(),
				State:       string(d.State()),
				Summary:     ev.Summary,
				Reason:      ev.Reason,
				Trail:       make([]string, len(ev.Trail)),
			}
			for i, s := range ev.Trail {
				out.Trail[i] = string(s)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out) //nolint:wrapcheck // CLI entry point
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Candidate ID (default: random UUID)")

	return cmd
}
