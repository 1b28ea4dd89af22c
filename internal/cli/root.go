// Package cli implements the relay command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// defaultRelayURL is where the client commands look for a running relay.
const defaultRelayURL = "http://localhost:8000"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "A small HTTP relay between browser frontends and a local Ollama server.",
	Long: `A small HTTP relay between browser frontends and a local Ollama server.
"relay serve" runs the API; the other commands talk to a running relay, the
Ollama server, or the optional exchange ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
