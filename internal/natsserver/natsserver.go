// Package natsserver spawns and configures the external nats-server binary.
// The broker itself is a black box; this package only generates its JSON
// config file and manages the subprocess lifecycle via os/exec.
package natsserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Config mirrors the subset of nats-server's config file this codebase
// needs to set: network listener, HTTP monitoring port, credentials,
// optional websocket listener, and debug logging.
type Config struct {
	ServerName string `json:"server_name"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	HTTPPort   int    `json:"http_port,omitempty"`
	User       string `json:"-"`
	Pass       string `json:"-"`
	Debug      bool   `json:"debug"`
	WebSocket  *WebSocketConfig `json:"websocket,omitempty"`
}

type WebSocketConfig struct {
	Port  int  `json:"port"`
	NoTLS bool `json:"no_tls"`
}

// fileConfig is the actual on-disk shape; authorization is a nested block
// in nats-server's config format rather than top-level fields.
type fileConfig struct {
	ServerName string                 `json:"server_name"`
	Host       string                 `json:"host"`
	Port       int                    `json:"port"`
	HTTPPort   int                    `json:"http_port,omitempty"`
	Debug      bool                   `json:"debug"`
	Authorization *authBlock          `json:"authorization,omitempty"`
	WebSocket  *WebSocketConfig       `json:"websocket,omitempty"`
}

type authBlock struct {
	User string `json:"user"`
	Pass string `json:"password"`
}

// WriteConfig renders cfg as the nats-server JSON config format and writes
// it to path.
func WriteConfig(path string, cfg Config) error {
	fc := fileConfig{
		ServerName: cfg.ServerName,
		Host:       cfg.Host,
		Port:       cfg.Port,
		HTTPPort:   cfg.HTTPPort,
		Debug:      cfg.Debug,
		WebSocket:  cfg.WebSocket,
	}
	if cfg.User != "" {
		fc.Authorization = &authBlock{User: cfg.User, Pass: cfg.Pass}
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("natsserver: render config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("natsserver: write config %s: %w", path, err)
	}
	return nil
}

// Process is a running nats-server subprocess.
type Process struct {
	cmd    *exec.Cmd
	logger *logrus.Logger
}

// Spawn starts binPath with "-c" configPath and returns once the process
// has been launched; it does not wait for the broker to finish starting.
func Spawn(ctx context.Context, binPath, configPath string, logger *logrus.Logger) (*Process, error) {
	if _, err := os.Stat(binPath); err != nil {
		return nil, fmt.Errorf("natsserver: binary %s not found: %w", binPath, err)
	}

	cmd := exec.CommandContext(ctx, binPath, "-c", configPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("natsserver: start %s: %w", binPath, err)
	}

	logger.WithFields(logrus.Fields{
		"bin":    binPath,
		"config": configPath,
		"pid":    cmd.Process.Pid,
	}).Info("nats-server started")

	return &Process{cmd: cmd, logger: logger}, nil
}

// Wait blocks until the subprocess exits.
func (p *Process) Wait() error {
	return p.cmd.Wait()
}

// Stop signals the subprocess to terminate; ctx cancellation (passed to
// Spawn) already does this, Stop is for an explicit shutdown path.
func (p *Process) Stop() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
