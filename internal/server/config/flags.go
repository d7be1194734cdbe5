package config

import (
	"flag"
	"os"

	"github.com/DikaaDK/Chronos-sub000/internal/flagx"
)

// parseFlags populates relay Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50061")
//	-s string   JWT HMAC secret key
//	-k string   publish key
//	-b int      subscriber buffer length
//	-l string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-k", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run relay")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PublishKey, "k", config.PublishKey, "publish key")
	fs.IntVar(&config.SubscriberBuffer, "b", config.SubscriberBuffer, "subscriber buffer length")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
