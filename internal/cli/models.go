package cli

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ollama-relay/internal/config"
	"ollama-relay/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the Ollama server",
	Long: `List the models pulled on the configured Ollama server.
The model the relay is configured to use is marked with an asterisk.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	client := llm.NewClient(cfg.OllamaBaseURL, cfg.ModelName, 30*time.Second)
	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(models) == 0 {
		fmt.Fprintf(out, "No models found on %s.\n", cfg.OllamaBaseURL)
		return nil
	}

	configured := llm.NormalizeModelName(cfg.ModelName)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"", "Name", "Size", "Modified"})
	table.SetBorder(false)
	table.SetColumnSeparator("  ")
	for _, m := range models {
		marker := ""
		if llm.NormalizeModelName(m.Name) == configured {
			marker = "*"
		}
		table.Append([]string{marker, m.Name, formatBytes(m.Size), formatModified(m.ModifiedAt)})
	}
	table.Render()
	return nil
}

// formatBytes prints sizes with binary units, e.g. "3.1 GiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatModified shortens Ollama's RFC 3339 timestamps; anything else is shown as is.
func formatModified(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}
