package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tattle-made/whatsapp-scraper/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Show the configuration this binary would run with",
	Long: `Configuration is read entirely from the environment (WHATSAPP_SCRAPER_*
variables). This command loads it and reports what's set, without making any
Drive, object store, or document store connections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Println("=== whatsapp-scraper configuration ===")
		fmt.Println()
		if cfg.GlobalSalt != "" {
			fmt.Println("Global salt: set")
		} else {
			fmt.Println("Global salt: NOT set (runs will require --salt-not-required)")
		}
		fmt.Printf("Drive credentials: %s\n", orNotSet(cfg.DriveCredentialsPath))
		fmt.Printf("Mongo URI: %s\n", orNotSet(cfg.MongoURI))
		fmt.Printf("Mongo database/collection: %s/%s\n", cfg.MongoDatabase, cfg.MongoCollection)
		fmt.Printf("Object store endpoint: %s\n", orNotSet(cfg.ObjectStoreEndpoint))
		fmt.Printf("Object store bucket: %s\n", orNotSet(cfg.ObjectStoreBucket))
		fmt.Printf("Run ledger path: %s\n", cfg.LedgerPath)
		return nil
	},
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
