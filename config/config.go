// Package config loads the cluster's TOML configuration document
//: [master], [chunk_server], and [client] sections.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// MasterConfig is the [master] section.
type MasterConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ChunkSize         int64  `toml:"chunk_size"`
	ReplicationFactor int    `toml:"replication_factor"`
}

// ChunkServerConfig is the [chunk_server] section.
type ChunkServerConfig struct {
	DataDir          string `toml:"data_dir"`
	HeartbeatInterval int   `toml:"heartbeat_interval"`
	SpaceLimit       int64  `toml:"space_limit"`
}

// ClientConfig is the [client] section.
type ClientConfig struct {
	UploadChunkSize int64 `toml:"upload_chunk_size"`
}

// Config is the full parsed document.
type Config struct {
	Master      MasterConfig      `toml:"master"`
	ChunkServer ChunkServerConfig `toml:"chunk_server"`
	Client      ClientConfig      `toml:"client"`
}

// Default returns the configuration used when no config file is supplied:
// 1 MiB chunks, 3-way replication, 5s heartbeats.
func Default() *Config {
	return &Config{
		Master: MasterConfig{
			Host:              "localhost",
			Port:              8000,
			ChunkSize:         1 << 20,
			ReplicationFactor: 3,
		},
		ChunkServer: ChunkServerConfig{
			DataDir:           "./storage",
			HeartbeatInterval: 5,
			SpaceLimit:        1 << 30,
		},
		Client: ClientConfig{
			UploadChunkSize: 1 << 20,
		},
	}
}

// Load reads and decodes a TOML configuration file, filling in defaults for
// anything the document leaves zero-valued.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}
