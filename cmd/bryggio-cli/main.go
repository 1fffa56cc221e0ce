// Command bryggio-cli is the thin, non-core front-end to a running
// supervisor: publish/request against the bus, list configured sensors, and
// a websocket reachability probe for the broker's optional websocket
// listener. It holds no supervisor logic of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/supervisor"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	natsURL := getEnvOrDefault("BRYGGIO_NATS_URL", supervisor.DefaultNATSURL)

	switch args[0] {
	case "publish":
		if len(args) != 3 {
			usage()
			return 1
		}
		return cmdPublish(natsURL, logger, args[1], args[2])
	case "request":
		if len(args) != 3 {
			usage()
			return 1
		}
		return cmdRequest(natsURL, logger, args[1], args[2])
	case "list-sensors":
		if len(args) != 2 {
			usage()
			return 1
		}
		return cmdListSensors(args[1])
	case "check-websocket":
		if len(args) != 2 {
			usage()
			return 1
		}
		return cmdCheckWebsocket(args[1])
	default:
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bryggio-cli <publish|request> <subject> <message>")
	fmt.Fprintln(os.Stderr, "       bryggio-cli list-sensors <config.json>")
	fmt.Fprintln(os.Stderr, "       bryggio-cli check-websocket <ws-url>")
}

func cmdPublish(natsURL string, logger *logrus.Logger, subj, msg string) int {
	bus, err := busclient.Dial(busclient.Options{URL: natsURL, Name: "bryggio-cli", Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer bus.Close()

	if err := bus.Publish(subj, []byte(msg)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdRequest(natsURL string, logger *logrus.Logger, subj, msg string) int {
	bus, err := busclient.Dial(busclient.Options{URL: natsURL, Name: "bryggio-cli", Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), busclient.DefaultRequestTimeout)
	defer cancel()
	reply, err := bus.Request(ctx, subj, []byte(msg), busclient.DefaultRequestTimeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(reply.Data))
	return 0
}

func cmdListSensors(configPath string) int {
	cfg, err := supervisor.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, s := range cfg.Hardware.Sensors {
		fmt.Println(s.ID)
	}
	return 0
}

// cmdCheckWebsocket dials the broker's optional websocket listener
// (nats.websocket in the config file) to confirm it's accepting
// connections, exercising gorilla/websocket against a live endpoint rather
// than the nats.go client's own TCP path.
func cmdCheckWebsocket(wsURL string) int {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()
	fmt.Println("ok")
	return 0
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
