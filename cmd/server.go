package cmd

import (
	"hbcplayer/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the playlist API server",
	Long:  `Runs the HTTP server backing the player: auth, per-user playlists, auto-playlist resolution, product metadata and cross-device sync.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
