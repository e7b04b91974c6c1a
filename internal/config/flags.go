package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/motionboard/internal/flagx"
)

var knownFlags = []string{"-d", "-w", "-u", "-l", "-f", "-m", "-s", "-b", "-g", "-e", "-k", "-p"}

// parseFlags overlays command-line flags onto config. Only the flags listed
// in knownFlags are looked at, so -c and anything else pass through.
// The debounce window is given in milliseconds.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("motionboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	debounce := fs.Int("w", int(config.SaveDebounce.Milliseconds()), "autosave debounce (in milliseconds)")
	fs.IntVar(&config.UndoLimit, "u", config.UndoLimit, "undo history depth")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (text or json)")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics listen address")
	fs.StringVar(&config.BackupSchedule, "s", config.BackupSchedule, "backup cron schedule")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "k", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			config.SaveDebounce = time.Duration(*debounce) * time.Millisecond
		}
	})
	return nil
}
