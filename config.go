package main

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
	Theme     ThemeConfig
	Log       LogConfig
	CORS      CORSConfig `mapstructure:"cors"`
}

type ServerConfig struct {
	Port string
	Mode string // gin mode: debug | release | test
}

type StorageConfig struct {
	Driver     string // sqlite | redis | memory
	SQLitePath string `mapstructure:"sqlite_path"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DashboardConfig struct {
	UserID      string `mapstructure:"user_id"`
	CatalogPath string `mapstructure:"catalog_path"` // optional JSON override of lessons/roster
}

type ThemeConfig struct {
	// SystemDark stands in for the OS-level dark-mode signal.
	SystemDark bool `mapstructure:"system_dark"`
}

type LogConfig struct {
	File string
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig reads <path>/config.yaml if present and overlays EDTECH_* env vars.
// A missing config file is not an error; every key has a default.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("EDTECH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "dashboard.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("dashboard.user_id", "user_priya_sharma_123")
	v.SetDefault("dashboard.catalog_path", "")
	v.SetDefault("theme.system_dark", false)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Dashboard.UserID) == "" {
		return nil, errors.New("dashboard.user_id must not be empty")
	}
	return &cfg, nil
}
