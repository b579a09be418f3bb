package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/carohq/cmdai/internal/app"
	"github.com/carohq/cmdai/internal/domain"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
	}
	cmd.AddCommand(newHistoryListCommand(container))
	cmd.AddCommand(newHistoryStatsCommand(container))
	cmd.AddCommand(newHistoryClearCommand(container))
	return cmd
}

func requireHistory(container *app.Container) error {
	if container.History == nil {
		return errors.New("history is disabled in the configuration")
	}
	return nil
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireHistory(container); err != nil {
				return err
			}
			records, err := container.History.Records(limit, search)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No history yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tPROMPT\tCOMMAND\tBACKEND\tRISK\tRAN")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(rec.Timestamp),
					truncate(rec.Prompt, 40),
					truncate(rec.Command, 50),
					rec.Backend,
					rec.RiskLevel,
					runMarker(rec),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultHistoryLimit, "Maximum records to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by prompt or command substring")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics over stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireHistory(container); err != nil {
				return err
			}
			stats, err := container.History.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Total runs:   %d\n", stats.TotalRuns)
			fmt.Printf("Executed:     %d\n", stats.Executed)
			fmt.Printf("Refused:      %d\n", stats.Refused)
			fmt.Printf("Avg latency:  %s\n", stats.AvgLatency)
			fmt.Printf("Total tokens: %s\n", humanize.Comma(int64(stats.TotalTokens)))
			if !stats.OldestRecord.IsZero() {
				fmt.Printf("Since:        %s\n", humanize.Time(stats.OldestRecord))
			}
			if len(stats.ByBackend) > 0 {
				fmt.Println("By backend:")
				for backend, count := range stats.ByBackend {
					fmt.Printf("  %-20s %d\n", backend, count)
				}
			}
			if len(stats.ByRiskLevel) > 0 {
				fmt.Println("By risk level:")
				for _, level := range []domain.RiskLevel{domain.RiskSafe, domain.RiskModerate, domain.RiskHigh, domain.RiskCritical} {
					if count := stats.ByRiskLevel[level]; count > 0 {
						fmt.Printf("  %-20s %d\n", level, count)
					}
				}
			}
			return nil
		},
	}
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireHistory(container); err != nil {
				return err
			}
			if err := container.History.Clear(); err != nil {
				return err
			}
			fmt.Println("History cleared.")
			return nil
		},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func runMarker(rec domain.HistoryRecord) string {
	switch {
	case rec.Refused:
		return "refused"
	case rec.Executed && rec.ExitCode == 0:
		return "ok"
	case rec.Executed:
		return fmt.Sprintf("exit %d", rec.ExitCode)
	default:
		return "-"
	}
}
