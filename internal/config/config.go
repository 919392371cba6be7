package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Content  ContentConfig  `mapstructure:"content" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// For the sqlite driver URL is a file path.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// SRSConfig holds the scheduling constants and deck limits.
// Zero values for the calculator constants keep the built-in defaults.
type SRSConfig struct {
	MinEaseFactor        float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	MaxIntervalDays      int     `mapstructure:"max_interval_days" validate:"gte=0"`
	AgainEasePenalty     float64 `mapstructure:"again_ease_penalty" validate:"gte=0"`
	HardEasePenalty      float64 `mapstructure:"hard_ease_penalty" validate:"gte=0"`
	EasyEaseBonus        float64 `mapstructure:"easy_ease_bonus" validate:"gte=0"`
	HardIntervalModifier float64 `mapstructure:"hard_interval_modifier" validate:"gte=0"`
	EasyIntervalModifier float64 `mapstructure:"easy_interval_modifier" validate:"gte=0"`
	RepetitionsPerLevel  int     `mapstructure:"repetitions_per_level" validate:"gte=0"`
	MaxLevel             int     `mapstructure:"max_level" validate:"gte=0"`
	MasteryLevel         int     `mapstructure:"mastery_level" validate:"gte=0"`

	InitialReviewDelayMinutes int `mapstructure:"initial_review_delay_minutes" validate:"gte=0"`

	DefaultDeckLimit int `mapstructure:"default_deck_limit" validate:"gt=0"`
	MaxDeckLimit     int `mapstructure:"max_deck_limit" validate:"gtefield=DefaultDeckLimit"`
}

// ContentConfig controls how display content is resolved for deck entries.
type ContentConfig struct {
	DefaultLanguage string `mapstructure:"default_language" validate:"required"`
	FetchTimeoutMS  int    `mapstructure:"fetch_timeout_ms" validate:"gt=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Enabled true"`
	ModelName    string `mapstructure:"model_name" validate:"required_if=Enabled true"`
	// PromptTemplatePath optionally replaces the built-in prompt.
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
	MaxRetries         int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds  int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
