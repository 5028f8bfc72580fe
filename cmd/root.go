package cmd

import (
	"fmt"
	"os"

	"hbcplayer/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hbcplayer",
	Short: "HitBeatClub playlist session server and player",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger(logger.Config{
			Level:      logger.InfoLevel,
			OutputPath: "logs/hbcplayer.log",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
