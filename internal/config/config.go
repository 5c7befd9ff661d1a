package config

import (
	"fmt"
	"time"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Model  ModelConfig  `mapstructure:"model"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type ModelConfig struct {
	Path         string `mapstructure:"path"`
	MetadataPath string `mapstructure:"metadata_path"`
}

func (c *Config) Validate() error {
	if c.App.Mode != "development" && c.App.Mode != "production" {
		return fmt.Errorf("app.mode must be development or production, got %q", c.App.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path must not be empty")
	}
	if c.Model.MetadataPath == "" {
		return fmt.Errorf("model.metadata_path must not be empty")
	}
	return nil
}
