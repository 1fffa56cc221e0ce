package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
)

// NewOutputPin builds the concrete OutputPin named by cfg.Type. Only the
// dummy pin ships in this codebase: the simple_gpio arm is served by a
// DummyPin, and no pin type drives real GPIO hardware.
func NewOutputPin(cfg model.ActuatorConfig) (OutputPin, model.TimeStamp, error) {
	switch {
	case cfg.Type.SimpleGPIO != nil:
		minHold := model.TimeStamp(0)
		if cfg.Type.SimpleGPIO.TimeOutMS != nil {
			minHold = model.TimeStamp(*cfg.Type.SimpleGPIO.TimeOutMS)
		}
		return &DummyPin{}, minHold, nil
	default:
		return nil, 0, fmt.Errorf("actuator: unknown device type for %s", cfg.ID)
	}
}

// Client wires an Actuator to the bus: set_signal and turn_off subjects.
type Client struct {
	id     model.ClientID
	act    *Actuator
	bus    busclient.Conn
	logger *logrus.Logger
}

func NewClient(id model.ClientID, act *Actuator, bus busclient.Conn, logger *logrus.Logger) *Client {
	return &Client{id: id, act: act, bus: bus, logger: logger}
}

// Run polls set_signal and turn_off until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	setSub, err := c.bus.Subscribe(subject.ActorSetSignal(c.id))
	if err != nil {
		return fmt.Errorf("actuator %s: subscribe set_signal: %w", c.id, err)
	}
	defer setSub.Unsubscribe()

	offSub, err := c.bus.Subscribe(subject.ActorTurnOff(c.id))
	if err != nil {
		return fmt.Errorf("actuator %s: subscribe turn_off: %w", c.id, err)
	}
	defer offSub.Unsubscribe()

	const pollInterval = 100 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if msg, ok := setSub.TryNext(); ok {
			c.handleSetSignal(msg)
		}
		if msg, ok := offSub.TryNext(); ok {
			c.handleTurnOff(msg)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(pollInterval):
		}
	}
}

func (c *Client) handleSetSignal(msg *busclient.Message) {
	var sig model.ActorSignal
	if err := json.Unmarshal(msg.Data, &sig); err != nil {
		c.logger.WithError(err).WithField("actuator_id", c.id).Warn("set_signal: parse failed")
		return
	}

	err := c.act.SetSignal(sig.Signal)
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrAlreadyActive):
		c.republishCurrentSignal(sig.Owner)
	default:
		c.logger.WithError(err).WithField("actuator_id", c.id).Warn("set_signal rejected")
	}
}

func (c *Client) handleTurnOff(msg *busclient.Message) {
	err := c.act.TurnOff()
	reply := "ok"
	if err != nil {
		reply = err.Error()
	}
	if msg.Reply != "" {
		if pubErr := c.bus.Publish(msg.Reply, []byte(reply)); pubErr != nil {
			c.logger.WithError(pubErr).WithField("actuator_id", c.id).Warn("turn_off: reply failed")
		}
	}
}

func (c *Client) republishCurrentSignal(owner model.ClientID) {
	payload, _ := json.Marshal(c.act.CurrentSignal(owner))
	if err := c.bus.Publish(subject.ActorCurrentSignal(c.id), payload); err != nil {
		c.logger.WithError(err).WithField("actuator_id", c.id).Warn("current_signal republish failed")
	}
}
