// Package supervisor parses the config file, spawns every client, and runs
// the command loop that dispatches external requests into the client mesh.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/actuator"
	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/controller"
	"github.com/bryggansbryggeri/bryggio-go/internal/datalogger"
	"github.com/bryggansbryggeri/bryggio-go/internal/logclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/sensor"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Supervisor owns the active-clients registry and the command loop.
type Supervisor struct {
	cfg      *Config
	bus      busclient.Conn
	logger   *logrus.Logger
	registry *Registry
}

func New(cfg *Config, bus busclient.Conn, logger *logrus.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, bus: bus, logger: logger, registry: NewRegistry()}
}

// Bootstrap spawns the log client, data logger, and one worker per
// configured sensor/actuator. Call Run afterwards to enter the command loop.
func (s *Supervisor) Bootstrap(ctx context.Context, csvPath string) error {
	s.spawnMisc("log", func(ctx context.Context) error {
		return logclient.NewClient(s.bus, s.logger).Run(ctx)
	})

	f, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("supervisor: open data log %s: %w", csvPath, err)
	}
	s.spawnMisc("data_logger", func(ctx context.Context) error {
		defer f.Close()
		return datalogger.NewClient(s.bus, f).Run(ctx)
	})

	for _, sc := range s.cfg.Hardware.Sensors {
		if err := s.spawnSensor(sc); err != nil {
			return err
		}
	}
	for _, ac := range s.cfg.Hardware.Actors {
		if err := s.spawnActuator(ac); err != nil {
			return err
		}
	}

	s.logger.WithField("brewery", s.cfg.General.BreweryName).Info("supervisor ready")
	return nil
}

func (s *Supervisor) spawnMisc(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := fn(ctx); err != nil {
			s.logger.WithError(err).WithField("client", name).Warn("misc client exited")
		}
	}()
	_ = s.registry.addMisc(model.ClientID(name), name, cancel, done)
}

func (s *Supervisor) spawnSensor(cfg model.SensorConfig) error {
	device, err := sensor.NewDevice(cfg)
	if err != nil {
		return fmt.Errorf("supervisor: sensor %s: %w", cfg.ID, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		client := sensor.NewClient(cfg.ID, device, s.bus, s.logger)
		if err := client.Run(ctx); err != nil {
			s.logger.WithError(err).WithField("sensor_id", cfg.ID).Warn("sensor client exited")
		}
	}()
	if err := s.registry.addSensor(cfg, cancel, done); err != nil {
		cancel()
		return fmt.Errorf("supervisor: sensor %s: %w", cfg.ID, err)
	}
	return nil
}

func (s *Supervisor) spawnActuator(cfg model.ActuatorConfig) error {
	pin, minHold, err := actuator.NewOutputPin(cfg)
	if err != nil {
		return fmt.Errorf("supervisor: actuator %s: %w", cfg.ID, err)
	}
	act := actuator.New(cfg.ID, pin, minHold)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		client := actuator.NewClient(cfg.ID, act, s.bus, s.logger)
		if err := client.Run(ctx); err != nil {
			s.logger.WithError(err).WithField("actuator_id", cfg.ID).Warn("actuator client exited")
		}
	}()
	if err := s.registry.addActuator(cfg, cancel, done); err != nil {
		cancel()
		return fmt.Errorf("supervisor: actuator %s: %w", cfg.ID, err)
	}
	return nil
}

// spawnController builds the law, starts the controller goroutine and
// inserts it into the registry. Rejects if cfg.ID is already active.
func (s *Supervisor) spawnController(cfg model.ControllerConfig, target float64) error {
	if s.registry.occupied(cfg.ID) {
		return errDuplicateID
	}
	law, err := controller.NewLaw(cfg.Kind, target)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		client := controller.NewClient(cfg.ID, cfg.ActuatorID, cfg.SensorID, law, s.bus, s.logger)
		if err := client.Run(ctx); err != nil {
			s.logger.WithError(err).WithField("controller_id", cfg.ID).Warn("controller client exited")
		}
	}()
	return s.registry.addController(cfg, cancel, done)
}

// errThreadJoin reports a kill whose worker did not join within the
// configured timeout; the registry entry is still removed to avoid
// poisoning future lookups, per the error-handling design's policy for
// ThreadJoin.
type errThreadJoin struct {
	ID model.ClientID
}

func (e *errThreadJoin) Error() string {
	return fmt.Sprintf("supervisor: controller %s did not join in time", e.ID)
}

// killController runs the kill protocol: request a shutdown, await the
// controller's reply, join its worker, then remove it from the registry.
func (s *Supervisor) killController(ctx context.Context, id model.ClientID) (string, error) {
	entry, ok := s.registry.controller(id)
	if !ok {
		return "", fmt.Errorf("%s is not an active client", id)
	}

	reqCtx, cancel := context.WithTimeout(ctx, KillTimeout)
	defer cancel()
	reply, reqErr := s.bus.Request(reqCtx, subject.SupervisorKill(id), nil, KillTimeout)

	joined := make(chan struct{})
	go func() {
		entry.join()
		close(joined)
	}()

	select {
	case <-joined:
		s.registry.removeController(id)
	case <-time.After(KillTimeout):
		s.registry.removeController(id)
		return "", &errThreadJoin{ID: id}
	}

	if reqErr != nil {
		return "", reqErr
	}
	return string(reply.Data), nil
}

// Run subscribes command.> with a blocking Next and dispatches each message
// until a "stop" command is received or ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	sub, err := s.bus.Subscribe(subject.CommandAll)
	if err != nil {
		return fmt.Errorf("supervisor: subscribe %s: %w", subject.CommandAll, err)
	}
	defer sub.Unsubscribe()

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		for {
			msg, err := sub.Next(grpCtx)
			if err != nil {
				if grpCtx.Err() != nil {
					return nil
				}
				return fmt.Errorf("supervisor: command loop: %w", err)
			}

			parsed, perr := subject.Parse(msg.Subject)
			if perr != nil || parsed.Kind != subject.KindCommand {
				s.reply(msg, fmt.Sprintf("parse error: unrecognized command subject %q", msg.Subject))
				continue
			}

			if parsed.Verb == "stop" {
				s.drainControllers(grpCtx)
				return nil
			}

			reply := s.dispatch(grpCtx, parsed.Verb, msg.Data)
			s.reply(msg, reply)
		}
	})
	return grp.Wait()
}

func (s *Supervisor) reply(msg *busclient.Message, text string) {
	if msg.Reply == "" {
		return
	}
	if err := s.bus.Publish(msg.Reply, []byte(text)); err != nil {
		s.logger.WithError(err).Warn("supervisor: command reply failed")
	}
}

// StartControllerRequest is the start_controller / switch_controller
// command payload.
type StartControllerRequest struct {
	ID         model.ClientID        `json:"id"`
	ActuatorID model.ClientID        `json:"actuator_id"`
	SensorID   model.ClientID        `json:"sensor_id"`
	Kind       model.ControllerKind  `json:"kind"`
	Target     float64               `json:"target"`
}

type StopControllerRequest struct {
	ID model.ClientID `json:"id"`
}

func (s *Supervisor) dispatch(ctx context.Context, verb string, payload []byte) string {
	switch verb {
	case "start_controller":
		var req StartControllerRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Sprintf("parse error: %v", err)
		}
		if s.registry.occupied(req.ID) {
			return fmt.Sprintf("controller %s already active", req.ID)
		}
		cfg := model.ControllerConfig{ID: req.ID, ActuatorID: req.ActuatorID, SensorID: req.SensorID, Kind: req.Kind}
		if err := s.spawnController(cfg, req.Target); err != nil {
			return err.Error()
		}
		return "ok"

	case "stop_controller":
		var req StopControllerRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Sprintf("parse error: %v", err)
		}
		reply, err := s.killController(ctx, req.ID)
		if err != nil {
			return err.Error()
		}
		return reply

	case "switch_controller":
		var req StartControllerRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Sprintf("parse error: %v", err)
		}
		if _, ok := s.registry.controller(req.ID); ok {
			if _, err := s.killController(ctx, req.ID); err != nil {
				return fmt.Sprintf("switch_controller: stop failed: %v", err)
			}
		}
		cfg := model.ControllerConfig{ID: req.ID, ActuatorID: req.ActuatorID, SensorID: req.SensorID, Kind: req.Kind}
		if err := s.spawnController(cfg, req.Target); err != nil {
			return fmt.Sprintf("switch_controller: start failed: %v", err)
		}
		return fmt.Sprintf("kind=%s target=%g", req.Kind.Tag(), req.Target)

	case "list_active_clients":
		snap := s.registry.snapshot()
		b, _ := json.Marshal(snap)
		return string(b)

	default:
		return fmt.Sprintf("parse error: unrecognized verb %q", verb)
	}
}

// drainControllers issues a kill to every active controller in sequence, as
// part of a global stop.
func (s *Supervisor) drainControllers(ctx context.Context) {
	ids := make([]model.ClientID, 0, len(s.registry.controllers))
	for id := range s.registry.controllers {
		ids = append(ids, id)
	}
	for _, id := range ids {
		if _, err := s.killController(ctx, id); err != nil {
			s.logger.WithError(err).WithField("controller_id", id).Warn("stop: kill failed during drain")
		}
	}
}
