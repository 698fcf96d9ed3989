// Package config resolves run defaults from the environment. Flags set on
// the command line always win over these values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dshills/scorebias/internal/dataset"
	"github.com/dshills/scorebias/internal/variant"
)

// DefaultSeed is the seed used when none is configured.
const DefaultSeed uint64 = 42

// Environment variable names.
const (
	EnvSeed               = "SCOREBIAS_SEED"
	EnvVariant            = "SCOREBIAS_VARIANT"
	EnvVariantsFile       = "SCOREBIAS_VARIANTS_FILE"
	EnvDBDriver           = "SCOREBIAS_DB_DRIVER"
	EnvDBDSN              = "SCOREBIAS_DB_DSN"
	EnvSupporterColumn    = "SCOREBIAS_SUPPORTER_COLUMN"
	EnvPerformanceColumn  = "SCOREBIAS_PERFORMANCE_COLUMN"
	EnvSatisfactionColumn = "SCOREBIAS_SATISFACTION_COLUMN"
)

// Config holds the defaults for a run.
type Config struct {
	Seed         uint64
	Variant      string
	VariantsFile string
	DBDriver     string
	DBDSN        string
	Columns      dataset.Columns
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Seed:     DefaultSeed,
		Variant:  variant.Baseline,
		DBDriver: "sqlite",
		Columns:  dataset.DefaultColumns(),
	}
}

// LoadDotEnv loads variables from the given .env files (or ./.env when
// none are given) without overriding variables already set. A missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv returns Default overridden by any SCOREBIAS_* variables.
func FromEnv() (Config, error) {
	cfg := Default()

	if raw := os.Getenv(EnvSeed); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s must be a non-negative integer, got %q", variant.ErrConfig, EnvSeed, raw)
		}
		cfg.Seed = seed
	}
	envOverride(&cfg.Variant, EnvVariant)
	envOverride(&cfg.VariantsFile, EnvVariantsFile)
	envOverride(&cfg.DBDriver, EnvDBDriver)
	envOverride(&cfg.DBDSN, EnvDBDSN)
	envOverride(&cfg.Columns.Supporter, EnvSupporterColumn)
	envOverride(&cfg.Columns.Performance, EnvPerformanceColumn)
	envOverride(&cfg.Columns.Satisfaction, EnvSatisfactionColumn)

	return cfg, nil
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
