package config

import (
	"flag"
	"os"
	"time"

	"github.com/DikaaDK/Chronos-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-u string   persistence API base URL
//	-r string   realtime relay address
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-i int      realtime reconnect interval (seconds)
//	-b string   backup bucket
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-r", "-d", "-t", "-i", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "persistence API base URL")
	fs.StringVar(&cfg.RealtimeAddr, "r", cfg.RealtimeAddr, "address and port of the realtime relay")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	reconnect := fs.Int("i", int(cfg.ReconnectInterval.Seconds()), "realtime reconnect interval (in seconds)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "backup bucket")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.ReconnectInterval = time.Duration(*reconnect) * time.Second
}
