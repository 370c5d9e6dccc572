package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hippu/meidobot/pkg/meidobot/bot"
)

// newModelsCmd creates the `meidobot models` command that lists the
// models available at the configured completion provider.
func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available at the completion provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			client := bot.NewLLMClient(cfg, logger)
			ids, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Available models:")
			for _, id := range ids {
				fmt.Println("  " + id)
			}
			return nil
		},
	}
}
