package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server ServerConfig `yaml:"server"`
	Upload UploadConfig `yaml:"upload"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type UploadConfig struct {
	// Maximum accepted .als upload size, in megabytes
	MaxSizeMB int `yaml:"max_size_mb"`

	// How long a parsed project stays available for generation
	TTLHours int `yaml:"ttl_hours"`

	// How often expired projects are cleaned up
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Upload.MaxSizeMB == 0 {
		config.Upload.MaxSizeMB = 50
	}

	if config.Upload.TTLHours == 0 {
		config.Upload.TTLHours = 24
	}

	if config.Upload.CleanupIntervalMinutes == 0 {
		config.Upload.CleanupIntervalMinutes = 120
	}

	return config, nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}

// ProjectTTL returns how long parsed projects are kept.
func (c *Config) ProjectTTL() time.Duration {
	return time.Duration(c.Upload.TTLHours) * time.Hour
}

// CleanupInterval returns how often the cleanup worker runs.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Upload.CleanupIntervalMinutes) * time.Minute
}
