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
	Index      IndexConfig      `yaml:"index" mapstructure:"index"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark" mapstructure:"benchmark"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Crunchbase CrunchbaseConfig `yaml:"crunchbase" mapstructure:"crunchbase"`
	LinkedIn   LinkedInConfig   `yaml:"linkedin" mapstructure:"linkedin"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// IndexConfig configures the peer similarity index.
type IndexConfig struct {
	// Path is the snapshot path prefix; <path>.index and <path>.meta are
	// written next to each other.
	Path      string `yaml:"path" mapstructure:"path"`
	PeerCount int    `yaml:"peer_count" mapstructure:"peer_count"`
}

// BenchmarkConfig configures the benchmarking engine.
type BenchmarkConfig struct {
	// RulesFile optionally overrides the built-in red-flag rule table.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// StoreConfig configures the run-history database backend. MaxConns and
// MinConns only apply to the postgres driver.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings for document extraction.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CrunchbaseConfig holds Crunchbase enrichment settings. Without a key the
// client serves offline profile data.
type CrunchbaseConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LinkedInConfig holds LinkedIn enrichment settings. Without a key the
// client serves offline profile data.
type LinkedInConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds Notion API credentials for run export.
type NotionConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	DealDB    string  `yaml:"deal_db" mapstructure:"deal_db"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BatchConfig configures batch benchmarking.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An explicit path
// makes the file mandatory; otherwise config.yaml in the working directory
// is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("DILIGENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("index.path", "data/peer_index")
	v.SetDefault("index.peer_count", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "diligence.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("crunchbase.base_url", "https://api.crunchbase.com/api/v4")
	v.SetDefault("linkedin.base_url", "https://api.linkedin.com/v2")
	v.SetDefault("notion.rate_limit", 3)

	// Read config file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if path != "" || !notFound {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required for the given command scope are
// present. Scopes: "extract", "export", "serve", "store".
func (c *Config) Validate(scope string) error {
	var missing []string

	switch scope {
	case "extract":
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required (DILIGENCE_ANTHROPIC_KEY)")
		}
	case "export":
		if c.Notion.Token == "" {
			missing = append(missing, "notion.token is required (DILIGENCE_NOTION_TOKEN)")
		}
		if c.Notion.DealDB == "" {
			missing = append(missing, "notion.deal_db is required (DILIGENCE_NOTION_DEAL_DB)")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			missing = append(missing, "server.port must be between 1 and 65535")
		}
	case "store":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required (DILIGENCE_STORE_DATABASE_URL)")
		}
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
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
