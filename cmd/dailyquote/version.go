package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X main.version=... -X main.gitCommit=... -X main.buildDate=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// no config needed to print the version
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "dailyquote version: %s\n", version)
			fmt.Fprintf(w, "  build date: %s\n", buildDate)
			fmt.Fprintf(w, "  git commit: %s\n", gitCommit)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
		},
	}
}
