// Package config loads the run's environment-derived configuration: the
// anonymization salt and the credentials for each external collaborator
// (Drive, object storage, document store).
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is populated from environment variables via env.Parse. Fields are
// grouped by the collaborator they configure; a field group is only
// required when that collaborator is actually wired in (e.g. object store
// credentials are unused in --local mode).
type Config struct {
	GlobalSalt string `env:"WHATSAPP_SCRAPER_GLOBAL_SALT"`

	DriveCredentialsPath string `env:"WHATSAPP_SCRAPER_DRIVE_CREDENTIALS,expand"`
	DriveTokenPath       string `env:"WHATSAPP_SCRAPER_DRIVE_TOKEN,expand"`

	ObjectStoreEndpoint  string `env:"WHATSAPP_SCRAPER_S3_ENDPOINT"`
	ObjectStoreAccessKey string `env:"WHATSAPP_SCRAPER_S3_ACCESS_KEY"`
	ObjectStoreSecretKey string `env:"WHATSAPP_SCRAPER_S3_SECRET_KEY"`
	ObjectStoreBucket    string `env:"WHATSAPP_SCRAPER_S3_BUCKET"`
	ObjectStoreUseSSL    bool   `env:"WHATSAPP_SCRAPER_S3_USE_SSL" envDefault:"true"`

	MongoURI        string `env:"WHATSAPP_SCRAPER_MONGO_URI"`
	MongoDatabase   string `env:"WHATSAPP_SCRAPER_MONGO_DATABASE" envDefault:"whatsapp_scraper"`
	MongoCollection string `env:"WHATSAPP_SCRAPER_MONGO_COLLECTION" envDefault:"conversations"`

	LedgerPath string `env:"WHATSAPP_SCRAPER_LEDGER_PATH,expand" envDefault:"$HOME/.whatsapp-scraper/ledger.db"`
}

// Load parses Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment config: %w", err)
	}
	return cfg, nil
}

// RequireSalt returns an error unless a global salt is configured, or
// saltNotRequired was explicitly passed on the command line acknowledging
// the run won't produce stable anonymized ids across runs.
func (c *Config) RequireSalt(saltNotRequired bool) error {
	if c.GlobalSalt == "" && !saltNotRequired {
		return errors.New("WHATSAPP_SCRAPER_GLOBAL_SALT is not set; pass --salt-not-required to proceed with a random, non-reproducible salt")
	}
	return nil
}
