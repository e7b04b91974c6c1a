// Package config loads runtime configuration for the motionboard binary.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   database DSN (sqlite file path or postgres:// URL)
//	-w int      autosave debounce window, milliseconds
//	-u int      undo history depth
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json)
//	-m string   metrics listen address, empty disables
//	-s string   backup cron schedule, empty disables
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-k string   S3 access key
//	-p string   S3 secret key
//
// # JSON schema
//
// Durations use timex.Duration, so "500ms" and integer nanoseconds both work:
//
//	{
//	  "database_dsn": "boards.db",
//	  "save_debounce": "750ms",
//	  "undo_limit": 100,
//	  "backup_schedule": "@every 1h",
//	  "s3_bucket": "motionboard"
//	}
//
// Fields absent from the file keep their previous value.
package config
