package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tattle-made/whatsapp-scraper/internal/anonymize"
	"github.com/tattle-made/whatsapp-scraper/internal/config"
	"github.com/tattle-made/whatsapp-scraper/internal/docstore"
	"github.com/tattle-made/whatsapp-scraper/internal/driveclient"
	"github.com/tattle-made/whatsapp-scraper/internal/ledger"
	"github.com/tattle-made/whatsapp-scraper/internal/logger"
	"github.com/tattle-made/whatsapp-scraper/internal/objectstore"
	"github.com/tattle-made/whatsapp-scraper/internal/pipeline"
)

var (
	flagSkipMedia       bool
	flagLocal           bool
	flagSaltNotRequired bool
	flagAssumeYes       bool
	flagOutputDir       string
)

var runCmd = &cobra.Command{
	Use:   "run <google-drive-folder-url>",
	Short: "Ingest a conversation export from a Google Drive folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	runCmd.Flags().BoolVar(&flagSkipMedia, "skip-media", false, "don't download or persist media files")
	runCmd.Flags().BoolVar(&flagLocal, "local", false, "write output to the local filesystem instead of the server")
	runCmd.Flags().BoolVar(&flagSaltNotRequired, "salt-not-required", false, "proceed without WHATSAPP_SCRAPER_GLOBAL_SALT set, using a random non-reproducible salt")
	runCmd.Flags().BoolVar(&flagAssumeYes, "assume-yes", false, "don't prompt before overwriting an existing local media directory")
	runCmd.Flags().StringVar(&flagOutputDir, "output-dir", ".", "directory to write local output into (with --local)")
	rootCmd.AddCommand(runCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	folderURL := args[0]
	folderID, err := driveclient.FolderIDFromURL(folderURL)
	if err != nil {
		return fmt.Errorf("%q does not look like a Google Drive folder url: %w", folderURL, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireSalt(flagSaltNotRequired); err != nil {
		return err
	}

	var anon *anonymize.Anonymizer
	if cfg.GlobalSalt != "" {
		anon = anonymize.New(cfg.GlobalSalt)
	} else {
		anon, err = anonymize.NewWithRandomSalt()
		if err != nil {
			return fmt.Errorf("generate random salt: %w", err)
		}
	}
	anonymize.SetDefault(anon)

	ctx := context.Background()
	drive, err := driveclient.New(ctx, cfg.DriveCredentialsPath, cfg.DriveTokenPath)
	if err != nil {
		return fmt.Errorf("set up google drive client: %w", err)
	}

	p := &pipeline.Pipeline{
		Drive: drive,
		Log:   logger.Get(),
	}

	if cfg.LedgerPath != "" {
		l, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("open run ledger: %w", err)
		}
		defer l.Close()
		p.Ledger = l
	}

	opts := pipeline.Options{
		SkipMedia:       flagSkipMedia,
		Local:           flagLocal,
		AssumeYes:       flagAssumeYes,
		SaltNotRequired: flagSaltNotRequired,
	}

	if flagLocal {
		confirm := docstore.StdinConfirm(os.Stdin)
		if flagAssumeYes {
			confirm = docstore.AlwaysYes
		}
		p.LocalStore = docstore.NewLocalStore(flagOutputDir, confirm)
	} else {
		ds, err := docstore.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return fmt.Errorf("connect to document store: %w", err)
		}
		p.DocStore = ds

		if !flagSkipMedia {
			store, err := objectstore.New(ctx, objectstore.Config{
				Endpoint:        cfg.ObjectStoreEndpoint,
				AccessKeyID:     cfg.ObjectStoreAccessKey,
				SecretAccessKey: cfg.ObjectStoreSecretKey,
				Bucket:          cfg.ObjectStoreBucket,
				UseSSL:          cfg.ObjectStoreUseSSL,
			})
			if err != nil {
				return fmt.Errorf("connect to object store: %w", err)
			}
			p.ObjectStore = store
		}
	}

	sum, err := p.Run(ctx, folderURL, folderID, opts)
	if err != nil {
		return err
	}

	logger.Get().InfoPrint("Considered %d file(s), parsed %d transcript(s), ingested %d message(s), uploaded %d media file(s), %d warning(s).",
		sum.FilesConsidered, sum.TranscriptsParsed, sum.MessagesIngested, sum.MediaUploaded, sum.Warnings)
	return nil
}
