package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
// The key database.url is read from WORDLOOM_DATABASE_URL.
const EnvPrefix = "WORDLOOM"

// Options controls where Load looks for configuration besides the environment.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml in the
	// working directory is used if present.
	ConfigFile string

	// EnvFile is a dotenv file loaded into the process environment before
	// reading variables. Variables already set are not overridden.
	EnvFile string
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions is Load with explicit file locations.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound explicitly.
	for _, key := range []string{"database.url", "auth.jwt_secret", "llm.gemini_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a loaded configuration.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("srs.min_ease_factor", 1.3)
	v.SetDefault("srs.max_interval_days", 36500)
	v.SetDefault("srs.again_ease_penalty", 0.20)
	v.SetDefault("srs.hard_ease_penalty", 0.15)
	v.SetDefault("srs.easy_ease_bonus", 0.15)
	v.SetDefault("srs.hard_interval_modifier", 0.8)
	v.SetDefault("srs.easy_interval_modifier", 1.3)
	v.SetDefault("srs.repetitions_per_level", 1)
	v.SetDefault("srs.max_level", 10)
	v.SetDefault("srs.mastery_level", 5)
	v.SetDefault("srs.initial_review_delay_minutes", 0)
	v.SetDefault("srs.default_deck_limit", 20)
	v.SetDefault("srs.max_deck_limit", 100)

	v.SetDefault("content.default_language", "en")
	v.SetDefault("content.fetch_timeout_ms", 2000)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("cors.allowed_origins", []string{})
}
