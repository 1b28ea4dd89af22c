package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ollama-relay/internal/config"
	"ollama-relay/internal/storage"
)

var errLedgerDisabled = errors.New("exchange ledger is not configured; set EXCHANGE_DB_PATH")

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show exchange ledger statistics",
	Long: `Summarize the exchange ledger written by "relay serve" and list the most
recent exchanges. Only sizes, timings and outcomes are recorded, never message text.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Int("limit", 10, "number of recent exchanges to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.ExchangeDBPath == "" {
		return errLedgerDisabled
	}

	db, err := storage.New(cfg.ExchangeDBPath)
	if err != nil {
		return fmt.Errorf("opening exchange ledger: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		return fmt.Errorf("migrating exchange ledger: %w", err)
	}

	repo := storage.NewExchangeRepo(db)
	ctx := cmd.Context()

	summary, err := repo.Summary(ctx)
	if err != nil {
		return err
	}
	recent, err := repo.Recent(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	writeSummary(out, summary)
	if len(recent) > 0 {
		fmt.Fprintln(out)
		writeRecent(out, recent)
	}
	return nil
}

func writeSummary(w io.Writer, s storage.ExchangeSummary) {
	last := "-"
	if !s.LastAt.IsZero() {
		last = s.LastAt.Local().Format(time.DateTime)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Total", "OK", "Failed", "Mean latency", "Last exchange"})
	table.SetBorder(false)
	table.Append([]string{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.OK),
		strconv.Itoa(s.Failed),
		s.MeanDuration.Round(time.Millisecond).String(),
		last,
	})
	table.Render()
}

func writeRecent(w io.Writer, exchanges []storage.Exchange) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Model", "Status", "History", "In", "Out", "Latency", "Request ID"})
	table.SetBorder(false)
	for _, ex := range exchanges {
		table.Append([]string{
			ex.CreatedAt.Local().Format(time.DateTime),
			ex.Model,
			ex.Status,
			strconv.Itoa(ex.HistoryLen),
			strconv.Itoa(ex.MessageChars),
			strconv.Itoa(ex.ReplyChars),
			ex.Duration.Round(time.Millisecond).String(),
			ex.RequestID,
		})
	}
	table.Render()
}
