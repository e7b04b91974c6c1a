package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the editor.
type Config struct {
	DatabaseDSN    string
	SaveDebounce   time.Duration
	UndoLimit      int
	LogLevel       string
	LogFormat      string
	MetricsAddr    string
	BackupSchedule string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates Config with local-first defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "motionboard.db"
	c.SaveDebounce = 500 * time.Millisecond
	c.UndoLimit = 50
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.MetricsAddr = ""
	c.BackupSchedule = ""
	c.S3Bucket = "motionboard"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3AccessKey = ""
	c.S3SecretKey = ""
}

// BackupsEnabled reports whether scheduled backups are configured.
func (c *Config) BackupsEnabled() bool {
	return c.BackupSchedule != ""
}

// LoadConfig builds a Config from defaults, the optional JSON file and the
// flags in args (program name excluded).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database DSN is empty")
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("save debounce must not be negative, got %s", c.SaveDebounce)
	}
	if c.UndoLimit < 1 {
		return fmt.Errorf("undo limit must be positive, got %d", c.UndoLimit)
	}
	return nil
}
