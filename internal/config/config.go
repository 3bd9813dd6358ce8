package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"deeplx/internal/translator"
)

type Config struct {
	DeepL   DeepLConfig   `mapstructure:"deepl"`
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// DeepLConfig holds the upstream endpoint and the client-identity headers.
// The header values must track the real mobile client's current release;
// keeping them in config means an app update doesn't require a rebuild here.
type DeepLConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Headers  map[string]string `mapstructure:"headers"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.deeplx")
	}

	// Set defaults
	viper.SetDefault("deepl.endpoint", translator.DefaultEndpoint)
	viper.SetDefault("deepl.headers", translator.DefaultHeaders())
	viper.SetDefault("deepl.timeout", "30s")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 1188)
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "./deeplx.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Resolve relative paths
	if !filepath.IsAbs(cfg.History.Path) {
		cwd, _ := os.Getwd()
		cfg.History.Path = filepath.Join(cwd, cfg.History.Path)
	}

	return &cfg, nil
}
