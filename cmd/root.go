package cmd

import (
	"fmt"
	"os"

	"musicbox/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "musicbox",
	Short: "MusicBox is a small self-hosted music library.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
