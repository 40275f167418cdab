package cmd

import (
	"musicbox/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MusicBox HTTP server",
	Long:  `Start the MusicBox HTTP server: song uploads, browsing, playlists and the web UI.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
