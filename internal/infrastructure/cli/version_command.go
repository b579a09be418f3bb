package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carohq/cmdai/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cmdai %s (%s)\n", version.Version, version.Commit)
		},
	}
}
