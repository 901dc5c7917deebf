package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google" envconfig:"GOOGLE"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Search  SearchConfig  `yaml:"search" envconfig:"SEARCH"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// GoogleConfig contains Google API access configuration.
type GoogleConfig struct {
	CredentialsPath       string `yaml:"credentials_path" envconfig:"CREDENTIALS_PATH" default:"credentials.json"`
	TokenPath             string `yaml:"token_path" envconfig:"TOKEN_PATH" default:"token.json"`
	TemplateSpreadsheetID string `yaml:"template_spreadsheet_id" envconfig:"TEMPLATE_SPREADSHEET_ID"`
	ShareEmail            string `yaml:"share_email" envconfig:"SHARE_EMAIL" validate:"omitempty,email"`
	SharePrefsPath        string `yaml:"share_prefs_path" envconfig:"SHARE_PREFS_PATH" default:"emails_to_share.json"`
}

// ServerConfig contains the trigger server configuration.
type ServerConfig struct {
	Host               string          `yaml:"host" envconfig:"HOST" default:"127.0.0.1"`
	Port               int             `yaml:"port" envconfig:"PORT" default:"8765" validate:"gt=0,lt=65536"`
	ReadTimeout        time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout    time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	UploadTimeout      time.Duration   `yaml:"upload_timeout" envconfig:"UPLOAD_TIMEOUT" default:"5m"`
	LoginAnalysisDelay time.Duration   `yaml:"login_analysis_delay" envconfig:"LOGIN_ANALYSIS_DELAY" default:"15s"`
	RateLimit          RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration for the trigger server.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"5"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// SearchConfig lists the directories scan folders and login CSVs are resolved against.
type SearchConfig struct {
	Roots []string `yaml:"roots" envconfig:"ROOTS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/orgreport.log"`
}

// Load loads configuration from environment variables and an optional YAML file.
// Environment variables (prefix ORGREPORT) take precedence over file values.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom is Load with an explicit config file path; the file may be absent.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// First pass fills the struct with tag defaults and any ORGREPORT_*
	// variables.
	if err := envconfig.Process("ORGREPORT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// The file overrides the defaults for whichever keys it sets.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// The unmarshal also clobbered explicit env values, so restore
			// env precedence from a fresh env-only pass.
			var env Config
			if err := envconfig.Process("ORGREPORT", &env); err != nil {
				return nil, fmt.Errorf("failed to load config from env: %w", err)
			}
			cfg.mergeEnv(env)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeEnv copies into c every field whose environment variable is actually
// set, so env wins over the file and the file wins over tag defaults.
func (c *Config) mergeEnv(env Config) {
	overlay := func(key string, apply func()) {
		if _, ok := os.LookupEnv("ORGREPORT_" + key); ok {
			apply()
		}
	}
	overlay("GOOGLE_CREDENTIALS_PATH", func() { c.Google.CredentialsPath = env.Google.CredentialsPath })
	overlay("GOOGLE_TOKEN_PATH", func() { c.Google.TokenPath = env.Google.TokenPath })
	overlay("GOOGLE_TEMPLATE_SPREADSHEET_ID", func() { c.Google.TemplateSpreadsheetID = env.Google.TemplateSpreadsheetID })
	overlay("GOOGLE_SHARE_EMAIL", func() { c.Google.ShareEmail = env.Google.ShareEmail })
	overlay("GOOGLE_SHARE_PREFS_PATH", func() { c.Google.SharePrefsPath = env.Google.SharePrefsPath })
	overlay("SERVER_HOST", func() { c.Server.Host = env.Server.Host })
	overlay("SERVER_PORT", func() { c.Server.Port = env.Server.Port })
	overlay("SERVER_READ_TIMEOUT", func() { c.Server.ReadTimeout = env.Server.ReadTimeout })
	overlay("SERVER_WRITE_TIMEOUT", func() { c.Server.WriteTimeout = env.Server.WriteTimeout })
	overlay("SERVER_SHUTDOWN_TIMEOUT", func() { c.Server.ShutdownTimeout = env.Server.ShutdownTimeout })
	overlay("SERVER_UPLOAD_TIMEOUT", func() { c.Server.UploadTimeout = env.Server.UploadTimeout })
	overlay("SERVER_LOGIN_ANALYSIS_DELAY", func() { c.Server.LoginAnalysisDelay = env.Server.LoginAnalysisDelay })
	overlay("SERVER_RATE_LIMIT_ENABLED", func() { c.Server.RateLimit.Enabled = env.Server.RateLimit.Enabled })
	overlay("SERVER_RATE_LIMIT_RPS", func() { c.Server.RateLimit.RPS = env.Server.RateLimit.RPS })
	overlay("SERVER_RATE_LIMIT_BURST", func() { c.Server.RateLimit.Burst = env.Server.RateLimit.Burst })
	overlay("SEARCH_ROOTS", func() { c.Search.Roots = env.Search.Roots })
	overlay("LOGGING_LEVEL", func() { c.Logging.Level = env.Logging.Level })
	overlay("LOGGING_OUTPUT", func() { c.Logging.Output = env.Logging.Output })
	overlay("LOGGING_FILE_PATH", func() { c.Logging.FilePath = env.Logging.FilePath })
}

// applyDefaults fills values envconfig cannot default (home-relative paths).
func (c *Config) applyDefaults() {
	if len(c.Search.Roots) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			c.Search.Roots = []string{
				filepath.Join(home, "Desktop"),
				filepath.Join(home, "Downloads"),
			}
		}
	}
}

// Validate checks the configuration using struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ResolveFolder resolves a bare folder name against the configured search
// roots. Returns the first existing directory, or false when none matches.
func (c *Config) ResolveFolder(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			return name, true
		}
		return "", false
	}
	for _, root := range c.Search.Roots {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func configFilePath() string {
	if path := os.Getenv("ORGREPORT_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
