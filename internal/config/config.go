// Package config loads application settings from the config file, SPICE_
// environment variables and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/budget"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/importer"
)

// EnvPrefix prefixes every environment variable the application reads.
const EnvPrefix = "SPICE"

// Config is the resolved application configuration.
type Config struct {
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Import struct {
		DateFormat     string `mapstructure:"date_format"`
		SkipDuplicates bool   `mapstructure:"skip_duplicates"`
		AutoCategorize bool   `mapstructure:"auto_categorize"`
		Snapshot       bool   `mapstructure:"snapshot"`
	} `mapstructure:"import"`

	Budget struct {
		MaxPeriods int `mapstructure:"max_periods"`
	} `mapstructure:"budget"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.path", filepath.Join(DataDir(), "spice.db"))

	v.SetDefault("import.date_format", importer.DefaultDateFormat)
	v.SetDefault("import.skip_duplicates", true)
	v.SetDefault("import.auto_categorize", true)
	v.SetDefault("import.snapshot", true)

	v.SetDefault("budget.max_periods", budget.DefaultMaxPeriods)
}

// Bind configures v to search the standard config locations and read SPICE_
// environment variables, where SPICE_DATABASE_PATH maps to database.path.
// An explicit file overrides the search.
func Bind(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Read reads the config file if there is one. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("No config file found, using defaults")
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := common.ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "pretty", "json":
	default:
		return fmt.Errorf("%w: log format %q (must be console, pretty or json)", common.ErrInvalidConfig, c.Logging.Format)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Budget.MaxPeriods <= 0 {
		return fmt.Errorf("%w: budget.max_periods must be positive, got %d", common.ErrInvalidConfig, c.Budget.MaxPeriods)
	}
	return nil
}

// LoadDotEnv loads the first .env file found in the working directory or the
// config directory. Variables already set in the environment win.
func LoadDotEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return "", fmt.Errorf("failed to load %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", nil
}
