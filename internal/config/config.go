package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/logging"
	"github.com/abhisek/fluentz/internal/store"
)

// EnvPrefix prefixes every environment variable read by Load, so
// llm.anthropic.api_key is read from FLUENTZ_LLM_ANTHROPIC_API_KEY.
const EnvPrefix = "FLUENTZ"

// Config holds all configuration for fluentz.
type Config struct {
	LLM     llm.Config     `mapstructure:"llm"`
	Lessons lessons.Config `mapstructure:"lessons"`
	Store   store.Config   `mapstructure:"store"`
	Log     logging.Config `mapstructure:"log"`
	Server  ServerConfig   `mapstructure:"server"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit config file. When empty, fluentz.yaml is
	// searched in the working directory and the user config directory.
	ConfigFile string

	// EnvFile is a dotenv file loaded into the process environment before
	// variables are read. Empty means ".env". A missing file is ignored.
	EnvFile string
}

// Load reads configuration from defaults, the config file, the dotenv
// file and FLUENTZ_* environment variables, in increasing priority.
// When the selected model provider has no API key, the standard vendor
// key variables are probed.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("fluentz")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/fluentz")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if !cfg.LLM.HasKey() {
		if discovered, ok := llm.DiscoverConfig(cfg.LLM); ok {
			cfg.LLM = discovered
		}
	}

	return &cfg, nil
}

// setDefaults registers every key with its default value. AutomaticEnv
// only resolves keys viper knows about, so keys without a meaningful
// default are registered empty.
func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)

	ls := lessons.DefaultConfig()
	v.SetDefault("lessons.max_tokens", ls.MaxTokens)
	v.SetDefault("lessons.temperature", ls.Temperature)
	v.SetDefault("lessons.pacing", ls.Pacing)
	v.SetDefault("lessons.unique_ids", ls.UniqueIDs)
	v.SetDefault("lessons.native_schema", ls.NativeSchema)
	v.SetDefault("lessons.language", ls.Language)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Validate checks the settings every command depends on. Model provider
// settings are validated separately by commands that call a model.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.Lessons.MaxTokens <= 0 {
		return fmt.Errorf("lessons.max_tokens must be positive, got %d", c.Lessons.MaxTokens)
	}
	if c.Lessons.Temperature < 0 || c.Lessons.Temperature > 2 {
		return fmt.Errorf("lessons.temperature must be between 0 and 2, got %v", c.Lessons.Temperature)
	}
	if c.Lessons.Pacing < 0 {
		return fmt.Errorf("lessons.pacing must not be negative, got %s", c.Lessons.Pacing)
	}
	return nil
}
