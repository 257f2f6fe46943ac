// Command stewardd is the long-running daemon: it watches the intake
// directory, serves the HTTP API, and answers the steward CLI over the
// IPC socket.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"steward/internal/config"
	"steward/internal/daemon"
	"steward/internal/ipc"
	"steward/internal/logging"
	"steward/internal/store"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	socketPath := flag.String("socket", "", "IPC socket path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, st, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, resolveSocketPath(cfg, *socketPath), d, logger)
	if err != nil {
		logger.Error("start ipc server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	select {
	case <-ctx.Done():
	case <-d.Stopped():
	}
	logger.Info("stewardd shutting down")
}
