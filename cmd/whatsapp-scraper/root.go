package main

import (
	"github.com/spf13/cobra"

	"github.com/tattle-made/whatsapp-scraper/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "whatsapp-scraper",
	Short: "Ingest WhatsApp chat exports from Google Drive",
	Long: `whatsapp-scraper pulls a WhatsApp chat export folder from Google Drive,
anonymizes identities, links media, merges overlapping transcripts, and
reconciles the result against what's already been persisted.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(); err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger.Get().SetAlsoStderr(true)
			logger.Get().SetLevel(logger.DEBUG)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "mirror log output to stderr")
}

// Execute runs the CLI, returning any error from the invoked command.
func Execute() error {
	return rootCmd.Execute()
}
