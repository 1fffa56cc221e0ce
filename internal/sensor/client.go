package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
)

// ErrUnknownDeviceType is returned by NewDevice when a config's tagged
// union carries no recognized arm.
var ErrUnknownDeviceType = fmt.Errorf("sensor: unknown device type")

// NewDevice builds the concrete Device named by cfg.Type.
func NewDevice(cfg model.SensorConfig) (Device, error) {
	switch {
	case cfg.Type.Dummy != nil:
		return NewDummyDevice(time.Duration(cfg.Type.Dummy.DelayMS) * time.Millisecond), nil
	case cfg.Type.DS18B20 != nil:
		return NewDS18B20Device(cfg.Type.DS18B20.Address, time.Duration(cfg.Type.DS18B20.DelayMS)*time.Millisecond)
	case cfg.Type.RbpiCPU != nil:
		return NewCPUTempDevice(time.Duration(cfg.Type.RbpiCPU.DelayMS) * time.Millisecond), nil
	default:
		return nil, ErrUnknownDeviceType
	}
}

// Client runs one sensor's sampling loop: accept a command (drained,
// currently a no-op body), read, timestamp, publish, sleep. A failed read is
// never retried; it is published as the error arm of SensorReading.
type Client struct {
	id     model.ClientID
	device Device
	bus    busclient.Conn
	logger *logrus.Logger
}

func NewClient(id model.ClientID, device Device, bus busclient.Conn, logger *logrus.Logger) *Client {
	return &Client{id: id, device: device, bus: bus, logger: logger}
}

// Run blocks until ctx is cancelled, sampling the device on each pass.
func (c *Client) Run(ctx context.Context) error {
	cmdSub, err := c.bus.Subscribe(subject.CommandSensor(c.id))
	if err != nil {
		return fmt.Errorf("sensor %s: subscribe command inbox: %w", c.id, err)
	}
	defer cmdSub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, ok := cmdSub.TryNext(); ok {
			// Commands are accepted but currently carry no behavior; the
			// inbox exists so a future verb can be added without a wire
			// change.
		}

		ts := model.Now()
		var reading model.SensorReading
		value, err := c.device.Read()
		if err != nil {
			reading = model.NewErrReading(c.id, ts, err)
			c.logger.WithError(err).WithField("sensor_id", c.id).Warn("sensor read failed")
		} else {
			reading = model.NewOKReading(c.id, ts, value)
		}

		payload, _ := json.Marshal(reading)
		if err := c.bus.Publish(subject.SensorMeasurement(c.id), payload); err != nil {
			c.logger.WithError(err).WithField("sensor_id", c.id).Warn("publish measurement failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.device.Delay()):
		}
	}
}
