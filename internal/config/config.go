package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/impact-cli/internal/confidence"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig            `yaml:"store" mapstructure:"store"`
	Server      ServerConfig           `yaml:"server" mapstructure:"server"`
	Log         LogConfig              `yaml:"log" mapstructure:"log"`
	Methodology MethodologyConfig      `yaml:"methodology" mapstructure:"methodology"`
	Engine      EngineConfig           `yaml:"engine" mapstructure:"engine"`
	Merge       MergeConfig            `yaml:"merge" mapstructure:"merge"`
	Confidence  confidence.DecayConfig `yaml:"confidence" mapstructure:"confidence"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MethodologyConfig points at extra methodology files and the default id.
type MethodologyConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	DefaultID string `yaml:"default_id" mapstructure:"default_id"`
}

// EngineConfig tunes the calculation engine.
type EngineConfig struct {
	Parallel            bool   `yaml:"parallel" mapstructure:"parallel"`
	EngagementCostField string `yaml:"engagement_cost_field" mapstructure:"engagement_cost_field"`
}

// MergeConfig tunes company-data merging.
type MergeConfig struct {
	DiscrepancyThreshold float64 `yaml:"discrepancy_threshold" mapstructure:"discrepancy_threshold"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("IMPACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	decay := confidence.DefaultDecay()
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "impact.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("methodology.default_id", "experience-transformation-design")
	v.SetDefault("engine.parallel", true)
	v.SetDefault("engine.engagement_cost_field", "engagement_cost")
	v.SetDefault("merge.discrepancy_threshold", 0.10)
	v.SetDefault("confidence.half_life_days", decay.HalfLifeDays)
	v.SetDefault("confidence.floor", decay.Floor)

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

// Validate checks the settings a command needs. mode is one of
// "calculate", "store" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "calculate":
	case "store":
		errs = append(errs, c.validateStore()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate_limit is set")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Merge.DiscrepancyThreshold < 0 {
		errs = append(errs, "merge.discrepancy_threshold must be >= 0")
	}
	if c.Confidence.HalfLifeDays < 0 {
		errs = append(errs, "confidence.half_life_days must be >= 0")
	}
	if c.Confidence.Floor < 0 || c.Confidence.Floor > 1 {
		errs = append(errs, "confidence.floor must be between 0 and 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "store.driver must be sqlite or postgres")
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
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
