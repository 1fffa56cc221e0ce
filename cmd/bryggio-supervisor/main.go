package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/natsserver"
	"github.com/bryggansbryggeri/bryggio-go/internal/supervisor"
	"github.com/sirupsen/logrus"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	configPath, csvPath, natsURL, verbose, embedNATS := parseFlags()
	logger := setupLogger(verbose)

	cfg, err := supervisor.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("supervisor: config")
	}

	logger.WithFields(logrus.Fields{
		"version": version,
		"brewery": cfg.General.BreweryName,
	}).Info("starting bryggio-supervisor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if embedNATS {
		proc, embedURL, err := startEmbeddedNATS(ctx, cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("supervisor: embedded nats-server")
		}
		defer proc.Stop()
		natsURL = embedURL
	}

	bus, err := busclient.Dial(busclient.Options{
		URL:      natsURL,
		Name:     "bryggio-supervisor",
		User:     cfg.NATS.User,
		Password: cfg.NATS.Pass,
		Logger:   logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("supervisor: broker connect")
	}
	defer bus.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("signal received, shutting down")
		cancel()
	}()

	sup := supervisor.New(cfg, bus, logger)
	if err := sup.Bootstrap(ctx, csvPath); err != nil {
		logger.WithError(err).Fatal("supervisor: bootstrap")
	}

	if err := sup.Run(ctx); err != nil {
		logger.WithError(err).Warn("supervisor: command loop exited")
	}
}

func parseFlags() (configPath, csvPath, natsURL string, verbose, embedNATS bool) {
	flag.StringVar(&configPath, "config",
		getEnvOrDefault("BRYGGIO_CONFIG", "bryggio.json"),
		"Path to the supervisor's JSON config file")
	flag.StringVar(&csvPath, "data-log",
		getEnvOrDefault("BRYGGIO_DATA_LOG", "bryggio_data.csv"),
		"Path to the append-only CSV data log")
	flag.StringVar(&natsURL, "nats-url",
		getEnvOrDefault("BRYGGIO_NATS_URL", supervisor.DefaultNATSURL),
		"URL of the running nats-server")
	flag.BoolVar(&verbose, "verbose",
		getEnvOrDefault("BRYGGIO_VERBOSE", "false") == "true",
		"Enable verbose (debug) logging")
	flag.BoolVar(&embedNATS, "embed-nats",
		getEnvOrDefault("BRYGGIO_EMBED_NATS", "false") == "true",
		"Render nats.* from the config file and launch nats-server as a child process")
	flag.Parse()
	return
}

// startEmbeddedNATS renders cfg.NATS to a config file in the OS temp
// directory and launches nats-server as a child of ctx, returning
// the URL the supervisor should dial instead of -nats-url.
func startEmbeddedNATS(ctx context.Context, cfg *supervisor.Config, logger *logrus.Logger) (*natsserver.Process, string, error) {
	confPath := filepath.Join(os.TempDir(), "bryggio-nats.conf")

	var ws *natsserver.WebSocketConfig
	if cfg.NATS.WebSocket.Port != 0 {
		ws = &natsserver.WebSocketConfig{Port: cfg.NATS.WebSocket.Port, NoTLS: cfg.NATS.WebSocket.NoTLS}
	}

	err := natsserver.WriteConfig(confPath, natsserver.Config{
		ServerName: cfg.NATS.ServerName,
		Host:       cfg.NATS.Host,
		Port:       cfg.NATS.Port,
		HTTPPort:   cfg.NATS.HTTPPort,
		User:       cfg.NATS.User,
		Pass:       cfg.NATS.Pass,
		Debug:      cfg.Debug(),
		WebSocket:  ws,
	})
	if err != nil {
		return nil, "", fmt.Errorf("embed-nats: %w", err)
	}

	proc, err := natsserver.Spawn(ctx, cfg.NATS.BinPath, confPath, logger)
	if err != nil {
		return nil, "", fmt.Errorf("embed-nats: %w", err)
	}
	return proc, fmt.Sprintf("nats://%s:%d", cfg.NATS.Host, cfg.NATS.Port), nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}
