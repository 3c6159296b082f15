// Command snipdex serves ranked snippet search and duplicate screening.
package main

import (
	"fmt"
	"os"

	"github.com/kailas-cloud/snipdex/cmd/snipdex/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
