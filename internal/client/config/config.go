// Package config loads runtime configuration for the Chronos terminal client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Durations in JSON use timex.Duration, so "3s" and integer nanoseconds are
// both accepted:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000/api",
//	  "realtime_addr": "127.0.0.1:50061",
//	  "database_path": "chronos.db",
//	  "request_timeout": "10s",
//	  "reconnect_interval": "3s",
//	  "s3_bucket": "chronos-backups"
//	}
package config

import "time"

// Config holds runtime settings for the client.
type Config struct {
	APIBaseURL        string
	RealtimeAddr      string
	DatabasePath      string
	RequestTimeout    time.Duration
	ReconnectInterval time.Duration
	LogLevel          string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// LoadDefaults populates c with local development defaults. Backups stay
// disabled until a bucket is configured.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.RealtimeAddr = "127.0.0.1:50061"
	c.DatabasePath = "chronos.db"
	c.RequestTimeout = 10 * time.Second
	c.ReconnectInterval = 3 * time.Second
	c.LogLevel = "warn"
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config from defaults, JSON and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
