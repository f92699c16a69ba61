package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the plugin repository tooling
type Config struct {
	Paths struct {
		PluginsDir         string `env:"PLUGINS_DIR" envDefault:"./plugins"`
		ManifestPath       string `env:"MANIFEST_PATH" envDefault:"./manifest.json"`
		PluginSchemaPath   string `env:"PLUGIN_SCHEMA_PATH"`   // Empty uses the embedded schema
		ManifestSchemaPath string `env:"MANIFEST_SCHEMA_PATH"` // Empty uses the embedded schema
	}

	GitHub GitHubConfig

	Generate struct {
		RequestDelay    time.Duration `env:"GENERATE_REQUEST_DELAY" envDefault:"1s"`
		DownloadPattern string        `env:"DEFAULT_DOWNLOAD_PATTERN" envDefault:".zip" validate:"required"`
	}

	LinkCheck struct {
		Timeout time.Duration `env:"LINKCHECK_TIMEOUT" envDefault:"10s"`
		Delay   time.Duration `env:"LINKCHECK_DELAY" envDefault:"500ms"`
	}

	Server struct {
		Port           int      `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
		CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:"," validate:"cors_origins"`
		RateLimitRPS   int      `env:"RATE_LIMIT_RPS" envDefault:"50" validate:"min=0"`
		RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"100" validate:"min=0"`
	}

	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
		Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=json text"`
	}
}

// GitHubConfig holds configuration for the hosting API client
type GitHubConfig struct {
	Token    string        `env:"GITHUB_TOKEN"` // Optional; absence only lowers rate limits
	APIURL   string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com" validate:"required"`
	Timeout  time.Duration `env:"GITHUB_TIMEOUT" envDefault:"30s"`
	CacheDir string        `env:"GITHUB_CACHE_DIR"` // Empty disables the conditional-request cache
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration using struct tags
func Validate(cfg *Config) error {
	validator := validator.New()

	if err := validator.RegisterValidation("cors_origins", validateCORSOrigins); err != nil {
		return fmt.Errorf("failed to register cors_origins validation: %w", err)
	}

	if err := validator.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCORSOrigins validates CORS origins format
func validateCORSOrigins(fl validator.FieldLevel) bool {
	origins := fl.Field().Interface().([]string)
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return false
		}
	}
	return true
}

// validateCustomRules performs additional validation beyond struct tags
func validateCustomRules(cfg *Config) error {
	if cfg.Paths.PluginsDir == "" {
		return fmt.Errorf("plugins directory cannot be empty")
	}
	if cfg.Paths.ManifestPath == "" {
		return fmt.Errorf("manifest path cannot be empty")
	}

	if cfg.Generate.RequestDelay < 0 {
		return fmt.Errorf("generate request delay cannot be negative")
	}
	if cfg.LinkCheck.Timeout < 100*time.Millisecond {
		return fmt.Errorf("link check timeout must be at least 100ms")
	}
	if cfg.LinkCheck.Delay < 0 {
		return fmt.Errorf("link check delay cannot be negative")
	}

	if err := validateGitHubConfig(&cfg.GitHub); err != nil {
		return err
	}

	return nil
}

// validateGitHubConfig validates hosting API settings
func validateGitHubConfig(cfg *GitHubConfig) error {
	if cfg.Timeout < time.Second {
		return fmt.Errorf("github timeout must be at least 1 second")
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("github API URL must be an absolute http(s) URL")
	}

	return nil
}

// HasToken reports whether an API token is configured
func (c GitHubConfig) HasToken() bool {
	return strings.TrimSpace(c.Token) != ""
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			case "oneof":
				messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param()))
			case "cors_origins":
				messages = append(messages, fmt.Sprintf("%s contains invalid origin format", e.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
			}
		}
		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}
	return err
}
