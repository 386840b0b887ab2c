package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	SERP    SERPConfig    `yaml:"serp" mapstructure:"serp"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SERPConfig configures the search-results provider.
type SERPConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
	Seed      uint64 `yaml:"seed" mapstructure:"seed"`
}

// ScoringConfig configures visibility-score weighting.
type ScoringConfig struct {
	Weights WeightsConfig `yaml:"weights" mapstructure:"weights"`
}

// WeightsConfig holds the five visibility sub-score weights.
type WeightsConfig struct {
	Search      float64 `yaml:"search" mapstructure:"search"`
	Local       float64 `yaml:"local" mapstructure:"local"`
	Social      float64 `yaml:"social" mapstructure:"social"`
	Reputation  float64 `yaml:"reputation" mapstructure:"reputation"`
	Consistency float64 `yaml:"consistency" mapstructure:"consistency"`
}

// IngestConfig configures the daily ingestion run.
type IngestConfig struct {
	RatePerSecond float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Devices       []string `yaml:"devices" mapstructure:"devices"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RANKTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("serp.provider", "seeded")
	v.SetDefault("serp.cache_path", "")
	v.SetDefault("ingest.rate_per_second", 5.0)
	v.SetDefault("ingest.devices", []string{"desktop", "mobile"})
	v.SetDefault("scoring.weights.search", 0.25)
	v.SetDefault("scoring.weights.local", 0.25)
	v.SetDefault("scoring.weights.social", 0.20)
	v.SetDefault("scoring.weights.reputation", 0.20)
	v.SetDefault("scoring.weights.consistency", 0.10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
