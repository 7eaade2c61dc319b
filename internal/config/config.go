// Package config loads settings for the trackcache demo binary.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the demo binary's configuration.
type Config struct {
	Redis RedisConfig `mapstructure:"redis"`
	Fetch FetchConfig `mapstructure:"fetch"`
}

// RedisConfig holds the backend connection settings.
type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

// FetchConfig holds the web-fetch cache settings.
type FetchConfig struct {
	Expiry  time.Duration `mapstructure:"expiry"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from a file and TRACKCACHE_* environment
// variables. A missing file is fine; defaults apply.
func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("config")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.SetEnvPrefix("TRACKCACHE")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("redis.prefix", "")
	vip.SetDefault("fetch.expiry", 10*time.Second)
	vip.SetDefault("fetch.timeout", 30*time.Second)

	if err := vip.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
