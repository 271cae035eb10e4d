package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/a3tai/posesion-efectiva/internal/formschema"
)

// Set at build time with -ldflags
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pectl %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Git Commit: %s\n", gitCommit)
			fmt.Fprintf(out, "Schema: %s\n", formschema.Default().Version)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		},
	}
}
