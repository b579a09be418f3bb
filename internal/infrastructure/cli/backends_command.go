package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/carohq/cmdai/internal/app"
)

func newBackendsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "Show configured backends and their health",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tPRIORITY\tAVAILABLE\tSUCCESS\tAVG LATENCY\tSAMPLES\tLAST CHECK")
			for _, desc := range container.Registry.Descriptors() {
				snap := container.Monitor.Snapshot(desc.Name)
				lastCheck := "never"
				if !snap.LastCheck.IsZero() {
					lastCheck = humanize.Time(snap.LastCheck)
				}
				latency := "-"
				if snap.AvgLatency > 0 {
					latency = snap.AvgLatency.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%t\t%.0f%%\t%s\t%d\t%s\n",
					desc.Name,
					desc.Kind,
					desc.Priority,
					snap.Available,
					snap.SuccessRate*100,
					latency,
					snap.Samples,
					lastCheck,
				)
			}
			return w.Flush()
		},
	}
}
