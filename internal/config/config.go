// Package config loads runtime settings from defaults, an optional YAML file
// and FORMREADER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/store"
)

// EnvPrefix prefixes every environment override, e.g. FORMREADER_STORE_BACKEND.
const EnvPrefix = "FORMREADER"

// Store backends.
const (
	BackendAirtable = "airtable"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
)

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Airtable AirtableConfig `mapstructure:"airtable"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	File     FileConfig     `mapstructure:"file"`
	Locale   string         `mapstructure:"locale"`
	Log      LogConfig      `mapstructure:"log"`
}

type StoreConfig struct {
	Backend        string `mapstructure:"backend"`
	QuestionsTable string `mapstructure:"questions_table"`
	AnswersTable   string `mapstructure:"answers_table"`
}

type AirtableConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	BaseID   string        `mapstructure:"base_id"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendAirtable)
	v.SetDefault("store.questions_table", store.DefaultQuestionsTable)
	v.SetDefault("store.answers_table", store.DefaultAnswersTable)
	v.SetDefault("airtable.endpoint", "https://api.airtable.com")
	v.SetDefault("airtable.base_id", "")
	v.SetDefault("airtable.api_key", "")
	v.SetDefault("airtable.timeout", "30s")
	v.SetDefault("sqlite.path", "formreader.db")
	v.SetDefault("file.dir", "data")
	v.SetDefault("locale", locale.DefaultLocale)
	v.SetDefault("log.level", "info")
}

// Load reads the configuration. An explicit path must exist; without one a
// formreader.yaml in the working directory is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("formreader")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	var problems []string
	switch c.Store.Backend {
	case BackendAirtable:
		if strings.TrimSpace(c.Airtable.BaseID) == "" {
			problems = append(problems, "airtable.base_id is required")
		}
		if strings.TrimSpace(c.Airtable.APIKey) == "" {
			problems = append(problems, "airtable.api_key is required")
		}
		if c.Airtable.Timeout < 0 {
			problems = append(problems, "airtable.timeout must not be negative")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			problems = append(problems, "sqlite.path is required")
		}
	case BackendFile:
		if strings.TrimSpace(c.File.Dir) == "" {
			problems = append(problems, "file.dir is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store.backend %q", c.Store.Backend))
	}
	if strings.TrimSpace(c.Store.QuestionsTable) == "" {
		problems = append(problems, "store.questions_table is required")
	}
	if strings.TrimSpace(c.Store.AnswersTable) == "" {
		problems = append(problems, "store.answers_table is required")
	}
	if strings.TrimSpace(c.Locale) == "" {
		problems = append(problems, "locale is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
