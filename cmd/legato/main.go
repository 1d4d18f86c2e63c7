// SPDX-License-Identifier: EPL-2.0

// Command legato plays, scans and renders audio files with the legato
// playback pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	// log is built by the root PersistentPreRunE and shared by every
	// subcommand.
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "legato",
	Short: "Queue playback, loudness scanning and offline rendering",
	Long: `legato plays local audio files (wav, mp3, ogg, aiff) through a
gapless, crossfade-capable pipeline, measures their loudness, and
renders whole queues to WAV files faster than real time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			log, err = zap.NewDevelopment()
			return err
		}
		// Playback progress is printed by the commands themselves;
		// without --verbose only trouble reaches the terminal.
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		log, err = cfg.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "legato:", err)
		os.Exit(1)
	}
}
