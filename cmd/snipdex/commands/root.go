// Package commands defines the Cobra CLI commands for the snipdex binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/snipdex/internal/config"
)

// env holds the --env flag value; it selects config/<env>.yaml.
var env string

// NewRootCmd constructs the root command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "snipdex",
		Short: "Ranked snippet search with duplicate screening",
		Long: `snipdex stores code snippets with summary, raw and combined vectors,
answers ranked searches under named weight variants, and screens new
snippets for near-duplicates with an optional external judge.

Configuration is read from config/<env>.yaml; ${VAR:-default} references
are expanded from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Config environment (local, dev, prod)")

	root.AddCommand(
		NewServeCmd(),
		NewSearchCmd(),
		NewCheckDuplicateCmd(),
		NewVersionCmd(),
	)

	return root
}
