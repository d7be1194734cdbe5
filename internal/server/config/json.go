package config

import (
	"encoding/json"
	"os"

	"github.com/DikaaDK/Chronos-sub000/internal/flagx"
)

// JsonConfig is the on-disk shape of the relay configuration.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	SecretKey        string `json:"secret_key"`
	PublishKey       string `json:"publish_key"`
	SubscriberBuffer int    `json:"subscriber_buffer"`
	LogLevel         string `json:"log_level"`
}

// parseJson overlays config with the JSON file named by -c or -config.
// Keys missing from the file keep their current value. Read or decode
// errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.PublishKey != "" {
		config.PublishKey = c.PublishKey
	}
	if c.SubscriberBuffer > 0 {
		config.SubscriberBuffer = c.SubscriberBuffer
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
