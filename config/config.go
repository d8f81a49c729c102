package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Web           WebConfig           `mapstructure:"web"`
}

// ServerConfig points at the goal-tracking API that owns all achievement state.
type ServerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PollSeconds    int    `mapstructure:"poll_seconds"` // 0 disables unlock polling
}

type AuthConfig struct {
	TokenPath string `mapstructure:"token_path"`
}

type NotificationsConfig struct {
	DwellMs int `mapstructure:"dwell_ms"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// WebConfig configures the local companion UI host.
type WebConfig struct {
	Addr           string   `mapstructure:"addr"`
	SessionSecret  string   `mapstructure:"session_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (c ServerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ServerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c NotificationsConfig) Dwell() time.Duration {
	return time.Duration(c.DwellMs) * time.Millisecond
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.base_url", "https://goalquest.app")
	viper.SetDefault("server.timeout_seconds", 15)
	viper.SetDefault("server.poll_seconds", 0)

	viper.SetDefault("auth.token_path", "./goalquest.token")

	viper.SetDefault("notifications.dwell_ms", 5000)

	viper.SetDefault("cache.path", "./goalquest.db")

	viper.SetDefault("web.addr", ":8080")
	viper.SetDefault("web.session_secret", "change-this-in-production")
	viper.SetDefault("web.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	// Allow environment variables
	viper.SetEnvPrefix("GOALQUEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
