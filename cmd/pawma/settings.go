package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PAWMA"

// Settings is the CLI configuration read from the config file and PAWMA_*
// environment variables. It never holds a master secret.
type Settings struct {
	Addr        string        `mapstructure:"addr"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RateLimit   int           `mapstructure:"rate_limit"`
	RateWindow  time.Duration `mapstructure:"rate_window"`
	TrustProxy  bool          `mapstructure:"trust_proxy"`
	TokenKey    string        `mapstructure:"token_key"`
	TokenIssuer string        `mapstructure:"token_issuer"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	Audit       bool          `mapstructure:"audit"`
	ClearAfter  time.Duration `mapstructure:"clear_after"`
	Output      string        `mapstructure:"output"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8417")
	v.SetDefault("redis_addr", "")
	v.SetDefault("rate_limit", 60)
	v.SetDefault("rate_window", time.Minute)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("token_key", "")
	v.SetDefault("token_issuer", "pawma")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("audit", false)
	v.SetDefault("clear_after", 30*time.Second)
	v.SetDefault("output", outputText)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
}

// defaultConfigPath is $XDG_CONFIG_HOME/pawma/config.yaml or its platform
// equivalent.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pawma", "config.yaml")
}

// loadSettings reads path if it exists, then overlays the environment. An
// explicitly requested path must exist.
func loadSettings(path string, explicit bool) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if explicit || !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return s, nil
}

// Validate checks value ranges and enums.
func (s Settings) Validate() error {
	if _, err := parseOutput(s.Output); err != nil {
		return err
	}
	if s.ClearAfter < 0 {
		return errors.New("clear_after must be >= 0")
	}
	if s.RateLimit < 0 {
		return errors.New("rate_limit must be >= 0")
	}
	if s.RateLimit > 0 && s.RateWindow <= 0 {
		return errors.New("rate_window must be > 0")
	}
	if s.TokenKey != "" && len(s.TokenKey) < 32 {
		return errors.New("token_key must be at least 32 bytes")
	}
	if s.TokenTTL <= 0 {
		return errors.New("token_ttl must be > 0")
	}
	return nil
}
