package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/babylog/internal/flagx"
	"github.com/joho/godotenv"
)

const EnvPrefix = "BABYLOG_"

// loadDotEnv exports the file named by -env-file (default ".env") without
// overriding variables already set.
func loadDotEnv(args []string) error {
	path := flagx.Lookup(args, "env-file")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
