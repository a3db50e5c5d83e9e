package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `yaml:"port"`
	DatabasePath    string        `yaml:"database_path"`
	Environment     string        `yaml:"environment"`
	AllowedOrigins  string        `yaml:"allowed_origins"`
	LogLevel        string        `yaml:"log_level"`
	SessionDuration time.Duration `yaml:"-"`

	Mailgun struct {
		Domain      string `yaml:"domain"`
		APIKey      string `yaml:"api_key"`
		SenderEmail string `yaml:"sender_email"`
		SenderName  string `yaml:"sender_name"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"mailgun"`
}

// Load reads the YAML config file at path (if it exists), expanding
// ${VAR} placeholders from the environment, then applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:            "8080",
		DatabasePath:    "eugenestrat.db",
		Environment:     "production",
		AllowedOrigins:  "http://localhost:8080",
		LogLevel:        "INFO",
		SessionDuration: 7 * 24 * time.Hour,
	}
	cfg.Mailgun.SenderName = "Eugene Strat"
	cfg.Mailgun.BaseURL = "http://localhost:8080"

	if data, err := os.ReadFile(path); err == nil {
		content := string(data)
		for _, env := range os.Environ() {
			pair := strings.SplitN(env, "=", 2)
			if len(pair) != 2 {
				continue
			}
			content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
		}

		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config: %w", err)
		}

		// Durations come in as strings like "168h", not nanosecond ints.
		var durations struct {
			SessionDuration string `yaml:"session_duration"`
		}
		if err := yaml.Unmarshal([]byte(content), &durations); err == nil && durations.SessionDuration != "" {
			parsed, err := time.ParseDuration(durations.SessionDuration)
			if err != nil {
				return nil, fmt.Errorf("invalid session_duration: %w", err)
			}
			cfg.SessionDuration = parsed
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Mailgun.Domain = getEnv("MAILGUN_DOMAIN", cfg.Mailgun.Domain)
	cfg.Mailgun.APIKey = getEnv("MAILGUN_API_KEY", cfg.Mailgun.APIKey)
	cfg.Mailgun.SenderEmail = getEnv("MAILGUN_SENDER_EMAIL", cfg.Mailgun.SenderEmail)

	if v := os.Getenv("SESSION_DURATION"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_DURATION: %w", err)
		}
		cfg.SessionDuration = parsed
	}

	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = 7 * 24 * time.Hour
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
