package main

import (
	"flag"
	"strconv"

	"github.com/harshvardha/distributed_file_system/chunkserver"
	"github.com/harshvardha/distributed_file_system/common"
	"github.com/harshvardha/distributed_file_system/config"
	"github.com/harshvardha/distributed_file_system/logging"
)

func main() {
	serverID := flag.String("id", "", "Stable server identity; restarting with a known ID rebinds its recorded port")
	port := flag.Int("port", 0, "Port for a new identity (0 picks a free one); ignored when the ID is already known")
	storage := flag.String("storage", "./storage", "Shared storage directory path")
	masterAddr := flag.String("master", common.DefaultMasterAddress, "Master server address")
	configPath := flag.String("config", "", "Path to TOML configuration file")
	x := flag.Float64("x", 0, "Chunk server X coordinate (placement hint)")
	y := flag.Float64("y", 0, "Chunk server Y coordinate (placement hint)")
	dev := flag.Bool("dev", false, "Use human-readable development logging")
	flag.Parse()

	if *dev {
		logging.SetDevelopment()
	}
	log := logging.Get("chunkserver.main")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ident, err := chunkserver.LoadOrCreateIdentity(*storage, *serverID, *port)
	if err != nil {
		log.Fatalw("failed to resolve server identity", "error", err)
	}

	address := "localhost:" + strconv.Itoa(ident.Port)
	log.Infow("starting chunk server", "id", ident.ServerID, "address", address, "storage", *storage, "master", *masterAddr)

	server, err := chunkserver.NewServer(address, *storage, *masterAddr, ident.ServerID, ident.Port, cfg.ChunkServer.SpaceLimit, cfg.ChunkServer.HeartbeatInterval, cfg.Master.ReplicationFactor, *x, *y)
	if err != nil {
		log.Fatalw("failed to create chunk server", "error", err)
	}

	if err := server.Start(); err != nil {
		log.Fatalw("chunk server failed", "error", err)
	}
}
