package main

import (
	"flag"
	"strconv"

	"github.com/harshvardha/distributed_file_system/config"
	"github.com/harshvardha/distributed_file_system/logging"
	"github.com/harshvardha/distributed_file_system/master"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML configuration file")
	metadataPath := flag.String("metadata", "./master-data/metadata.json", "Path to persisted namespace metadata")
	dev := flag.Bool("dev", false, "Use human-readable development logging")
	flag.Parse()

	if *dev {
		logging.SetDevelopment()
	}
	log := logging.Get("master.main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	address := cfg.Master.Host + ":" + strconv.Itoa(cfg.Master.Port)
	log.Infow("starting master", "address", address, "replication_factor", cfg.Master.ReplicationFactor)

	server, err := master.NewServer(address, *metadataPath, cfg.ChunkServer.HeartbeatInterval, cfg.Master.ReplicationFactor)
	if err != nil {
		log.Fatalw("failed to create master", "error", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalw("master failed", "error", err)
	}
}

