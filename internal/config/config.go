package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderBackend = "backend"
	ProviderOpenAI  = "openai"

	envPrefix = "SENTIMENT"
)

type Config struct {
	// Provider selects who answers predictions: the HTTP backend or an OpenAI-compatible model
	Provider string        `mapstructure:"provider"`
	Backend  BackendConfig `mapstructure:"backend"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
	Display  DisplayConfig `mapstructure:"display"`
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
}

type BackendConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxResponseBytes int64         `mapstructure:"max_response_bytes"`
}

type OpenAIConfig struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	APIEndpoint    string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	DeploymentName string `mapstructure:"deployment"`
	APIVersion     string `mapstructure:"api_version"`
}

type DisplayConfig struct {
	// BCP 47 tag used for thousands separators
	Locale string `mapstructure:"locale"`

	// Go time layout for client-side timestamps on failed predictions
	TimestampLayout string `mapstructure:"timestamp_layout"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	StaticDir    string        `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"provider":                   ProviderBackend,
	"backend.base_url":           "http://localhost:5000/api",
	"backend.timeout":            "30s",
	"backend.max_response_bytes": int64(4 * 1024 * 1024),
	"openai.provider":            "openai",
	"openai.api_key":             "",
	"openai.endpoint":            "https://api.openai.com/v1",
	"openai.model":               "gpt-4o-mini",
	"openai.deployment":          "gpt-4o",
	"openai.api_version":         "2023-05-15",
	"display.locale":             "en-US",
	"display.timestamp_layout":   "1/2/2006, 3:04:05 PM",
	"server.port":                "8000",
	"server.host":                "0.0.0.0",
	"server.read_timeout":        "30s",
	"server.write_timeout":       "30s",
	"server.static_dir":          "",
	"log.level":                  "info",
	"log.format":                 "text",
}

// LoadConfig reads defaults, then the optional config file at path, then
// SENTIMENT_* environment variables (SENTIMENT_BACKEND_BASE_URL and so on).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully", "provider", cfg.Provider, "backend", cfg.Backend.BaseURL)
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, errors.New("backend.base_url cannot be empty"))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout cannot be negative"))
	}

	switch c.Provider {
	case ProviderBackend:
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("openai.api_key is required when provider is openai"))
		}
		if c.OpenAI.Provider != "openai" && c.OpenAI.Provider != "azure" {
			errs = append(errs, fmt.Errorf("unknown openai.provider %q", c.OpenAI.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel maps log.level to a slog level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
