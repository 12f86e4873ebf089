// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Scorer ScorerConfig `yaml:"scorer" mapstructure:"scorer"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL     string `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	QueryTimeoutSec int    `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
}

// ServerConfig configures the insights HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestsPerSecond  float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst              int      `yaml:"burst" mapstructure:"burst"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScorerConfig holds the health score bucket thresholds and points.
type ScorerConfig struct {
	MarginStrong       float64 `yaml:"margin_strong" mapstructure:"margin_strong"`
	MarginFair         float64 `yaml:"margin_fair" mapstructure:"margin_fair"`
	MarginStrongPoints int     `yaml:"margin_strong_points" mapstructure:"margin_strong_points"`
	MarginFairPoints   int     `yaml:"margin_fair_points" mapstructure:"margin_fair_points"`
	MarginWeakPoints   int     `yaml:"margin_weak_points" mapstructure:"margin_weak_points"`

	CollectionStrong       float64 `yaml:"collection_strong" mapstructure:"collection_strong"`
	CollectionFair         float64 `yaml:"collection_fair" mapstructure:"collection_fair"`
	CollectionStrongPoints int     `yaml:"collection_strong_points" mapstructure:"collection_strong_points"`
	CollectionFairPoints   int     `yaml:"collection_fair_points" mapstructure:"collection_fair_points"`
	CollectionWeakPoints   int     `yaml:"collection_weak_points" mapstructure:"collection_weak_points"`

	LaborTargetMin    float64 `yaml:"labor_target_min" mapstructure:"labor_target_min"`
	LaborTargetMax    float64 `yaml:"labor_target_max" mapstructure:"labor_target_max"`
	LaborToleranceMin float64 `yaml:"labor_tolerance_min" mapstructure:"labor_tolerance_min"`
	LaborToleranceMax float64 `yaml:"labor_tolerance_max" mapstructure:"labor_tolerance_max"`
	LaborTargetPoints int     `yaml:"labor_target_points" mapstructure:"labor_target_points"`
	LaborNearPoints   int     `yaml:"labor_near_points" mapstructure:"labor_near_points"`
	LaborOffPoints    int     `yaml:"labor_off_points" mapstructure:"labor_off_points"`

	MaxActiveJobs      int `yaml:"max_active_jobs" mapstructure:"max_active_jobs"`
	ActiveJobsPoints   int `yaml:"active_jobs_points" mapstructure:"active_jobs_points"`
	OverloadedPoints   int `yaml:"overloaded_points" mapstructure:"overloaded_points"`
	NoActiveJobsPoints int `yaml:"no_active_jobs_points" mapstructure:"no_active_jobs_points"`

	ExcellentScore      int `yaml:"excellent_score" mapstructure:"excellent_score"`
	HealthyScore        int `yaml:"healthy_score" mapstructure:"healthy_score"`
	NeedsAttentionScore int `yaml:"needs_attention_score" mapstructure:"needs_attention_score"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_open_conns", 10)
	v.SetDefault("store.query_timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.requests_per_second", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scorer.margin_strong", 15.0)
	v.SetDefault("scorer.margin_fair", 10.0)
	v.SetDefault("scorer.margin_strong_points", 30)
	v.SetDefault("scorer.margin_fair_points", 20)
	v.SetDefault("scorer.margin_weak_points", 10)
	v.SetDefault("scorer.collection_strong", 75.0)
	v.SetDefault("scorer.collection_fair", 60.0)
	v.SetDefault("scorer.collection_strong_points", 25)
	v.SetDefault("scorer.collection_fair_points", 15)
	v.SetDefault("scorer.collection_weak_points", 5)
	v.SetDefault("scorer.labor_target_min", 20.0)
	v.SetDefault("scorer.labor_target_max", 35.0)
	v.SetDefault("scorer.labor_tolerance_min", 15.0)
	v.SetDefault("scorer.labor_tolerance_max", 40.0)
	v.SetDefault("scorer.labor_target_points", 25)
	v.SetDefault("scorer.labor_near_points", 15)
	v.SetDefault("scorer.labor_off_points", 5)
	v.SetDefault("scorer.max_active_jobs", 8)
	v.SetDefault("scorer.active_jobs_points", 20)
	v.SetDefault("scorer.overloaded_points", 10)
	v.SetDefault("scorer.no_active_jobs_points", 5)
	v.SetDefault("scorer.excellent_score", 80)
	v.SetDefault("scorer.healthy_score", 60)
	v.SetDefault("scorer.needs_attention_score", 40)

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
