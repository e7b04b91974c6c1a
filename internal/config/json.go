package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/motionboard/internal/flagx"
	"github.com/dmitrijs2005/motionboard/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// an absent key apart from an explicit zero.
type JsonConfig struct {
	DatabaseDSN    *string         `json:"database_dsn"`
	SaveDebounce   *timex.Duration `json:"save_debounce"`
	UndoLimit      *int            `json:"undo_limit"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	MetricsAddr    *string         `json:"metrics_addr"`
	BackupSchedule *string         `json:"backup_schedule"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	S3AccessKey    *string         `json:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key"`
}

// parseJson overlays the file named by -c/-config onto config. Without
// such a flag nothing happens.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	set(&config.DatabaseDSN, c.DatabaseDSN)
	if c.SaveDebounce != nil {
		config.SaveDebounce = c.SaveDebounce.Duration
	}
	set(&config.UndoLimit, c.UndoLimit)
	set(&config.LogLevel, c.LogLevel)
	set(&config.LogFormat, c.LogFormat)
	set(&config.MetricsAddr, c.MetricsAddr)
	set(&config.BackupSchedule, c.BackupSchedule)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
