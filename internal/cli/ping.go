package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that a relay is up",
	Long:  `Call the health route of a running relay and exit non-zero unless it reports ok.`,
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	pingCmd.Flags().String("url", defaultRelayURL, "base URL of the relay")
	pingCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if err := newRelayClient(baseURL, timeout).Health(cmd.Context()); err != nil {
		return fmt.Errorf("relay at %s is not healthy: %w", baseURL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "relay at %s is ok\n", baseURL)
	return nil
}
