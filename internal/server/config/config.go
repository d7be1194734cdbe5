// Package config handles configuration for the realtime relay, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the relay.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - SecretKey: HMAC secret shared with the journal backend for verifying
//     subscriber access tokens (HS256).
//   - PublishKey: key the backend presents when publishing events.
//   - SubscriberBuffer: per-subscriber queue length; a full queue drops events.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC string
	SecretKey        string
	PublishKey       string
	SubscriberBuffer int
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the keys are insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50061"
	c.SecretKey = "secretKey"
	c.PublishKey = "publishKey"
	c.SubscriberBuffer = 16
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
