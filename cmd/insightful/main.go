package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "insightful",
		Short: "The insightful content server",
		Long: `Insightful serves articles with live, URL-synchronized page state.

The active tab on an article page lives in the URL fragment and the
archive filters live in the query string, so every view is a
shareable, bookmarkable address. A WebSocket session keeps the
server-side state and the browser's address bar in sync.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
