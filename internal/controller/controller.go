// Package controller implements the controller client: it binds a sensor
// reading stream and an actuator to one control law, honoring set-target
// requests and the supervisor's kill protocol.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/control"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
)

// LoopPause is the cooperative poll interval between passes; it bounds how
// quickly the controller reacts to a kill, set-target or measurement.
const LoopPause = 100 * time.Millisecond

// SetTargetRequest is the set_target subject's JSON payload.
type SetTargetRequest struct {
	Target float64 `json:"target"`
}

// Client is one running controller: id, the bound actuator/sensor ids, the
// law, and the bus connection.
type Client struct {
	id         model.ClientID
	actuatorID model.ClientID
	sensorID   model.ClientID
	law        control.Law
	bus        busclient.Conn
	logger     *logrus.Logger
}

func NewClient(id, actuatorID, sensorID model.ClientID, law control.Law, bus busclient.Conn, logger *logrus.Logger) *Client {
	return &Client{id: id, actuatorID: actuatorID, sensorID: sensorID, law: law, bus: bus, logger: logger}
}

// Run subscribes the three input subjects, publishes a start status, then
// polls kill > set-target > measurement each pass until killed or ctx ends.
func (c *Client) Run(ctx context.Context) error {
	killSub, err := c.bus.Subscribe(subject.SupervisorKill(c.id))
	if err != nil {
		return fmt.Errorf("controller %s: subscribe kill: %w", c.id, err)
	}
	defer killSub.Unsubscribe()

	targetSub, err := c.bus.Subscribe(subject.ControllerSetTarget(c.id))
	if err != nil {
		return fmt.Errorf("controller %s: subscribe set_target: %w", c.id, err)
	}
	defer targetSub.Unsubscribe()

	measureSub, err := c.bus.Subscribe(subject.SensorMeasurement(c.sensorID))
	if err != nil {
		return fmt.Errorf("controller %s: subscribe measurement: %w", c.id, err)
	}
	defer measureSub.Unsubscribe()

	c.publishStatus()

	for {
		if msg, ok := killSub.TryNext(); ok {
			c.handleKill(ctx, msg)
			return nil
		}

		if msg, ok := targetSub.TryNext(); ok {
			c.handleSetTarget(msg)
		}

		if msg, ok := measureSub.TryNext(); ok {
			c.handleMeasurement(msg)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(LoopPause):
		}
	}
}

func (c *Client) handleKill(ctx context.Context, msg *busclient.Message) {
	reqCtx, cancel := context.WithTimeout(ctx, busclient.DefaultRequestTimeout)
	defer cancel()

	reply, err := c.bus.Request(reqCtx, subject.ActorTurnOff(c.actuatorID), nil, busclient.DefaultRequestTimeout)
	replyText := "ok"
	if err != nil {
		replyText = err.Error()
		c.logger.WithError(err).WithField("controller_id", c.id).Warn("kill: turn_off request failed")
	} else {
		replyText = string(reply.Data)
	}

	if msg.Reply != "" {
		if err := c.bus.Publish(msg.Reply, []byte(replyText)); err != nil {
			c.logger.WithError(err).WithField("controller_id", c.id).Warn("kill: reply publish failed")
		}
	}
	c.publishStatus()
}

func (c *Client) handleSetTarget(msg *busclient.Message) {
	var req SetTargetRequest
	replyText := ""
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		replyText = fmt.Sprintf("parse error: %v", err)
	} else if v, err := c.law.ValidateTarget(req.Target); err != nil {
		replyText = err.Error()
	} else if err := c.law.SetTarget(v); err != nil {
		replyText = err.Error()
	} else {
		replyText = fmt.Sprintf("%g", v)
	}

	if msg.Reply != "" {
		if err := c.bus.Publish(msg.Reply, []byte(replyText)); err != nil {
			c.logger.WithError(err).WithField("controller_id", c.id).Warn("set_target: reply publish failed")
		}
	}
	c.publishStatus()
}

func (c *Client) handleMeasurement(msg *busclient.Message) {
	reading, err := busclient.Decode[model.SensorReading](msg.Data)
	if err != nil {
		c.logger.WithError(err).WithField("controller_id", c.id).Warn("measurement: decode failed")
		return
	}

	signal := c.law.Update(reading.Value)

	payload, _ := json.Marshal(model.ActorSignal{Owner: c.id, Signal: signal})
	if err := c.bus.Publish(subject.ActorSetSignal(c.actuatorID), payload); err != nil {
		c.logger.WithError(err).WithField("controller_id", c.id).Warn("set_signal publish failed")
	}
	c.publishStatus()
}

func (c *Client) publishStatus() {
	status := model.StatusMessage{
		ControllerID: c.id,
		Kind:         c.law.Kind(),
		Target:       c.law.Target(),
		Signal:       c.law.Signal(),
		State:        c.law.State().String(),
	}
	if err := c.bus.Publish(subject.ControllerStatus(c.id), status.JSON()); err != nil {
		c.logger.WithError(err).WithField("controller_id", c.id).Warn("status publish failed")
	}
}
