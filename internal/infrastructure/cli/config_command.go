package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/carohq/cmdai/internal/app"
)

func newConfigCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := yaml.Marshal(container.Config)
			if err != nil {
				return err
			}
			if custom := os.Getenv("CMDAI_CONFIG"); custom != "" {
				fmt.Printf("# loaded from %s\n", custom)
			}
			fmt.Print(string(raw))
			return nil
		},
	}
}
