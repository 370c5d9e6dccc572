// Package commands implements the Meidobot CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meidobot",
		Short: "Meidobot - a sarcastic Discord chat bot",
		Long: `Meidobot is a Discord chat bot with an attitude. It follows
conversations, replies when spoken to, reacts to images with emojis
and can read fun facts aloud on a voice channel.

Examples:
  meidobot serve
  meidobot serve --config ./meidobot.yaml
  meidobot models`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newModelsCmd(),
	)

	// Global flags.
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
