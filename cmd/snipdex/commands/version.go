package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/snipdex/internal/version"
)

// NewVersionCmd constructs the `snipdex version` subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the snipdex version, git commit and build date",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snipdex %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
