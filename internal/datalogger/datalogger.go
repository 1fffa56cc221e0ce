// Package datalogger subscribes to every sensor measurement and actuator
// current-signal broadcast and flattens them into a single append-only CSV
// sink, flushing after every record.
package datalogger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
)

// pollPause bounds CPU spin when neither subscription has a pending message.
const pollPause = 20 * time.Millisecond

// Client appends one CSV row per measurement/current-signal message.
type Client struct {
	bus    busclient.Conn
	writer *csv.Writer
}

// NewClient wraps w in a csv.Writer; the caller owns closing the underlying
// file.
func NewClient(bus busclient.Conn, w io.Writer) *Client {
	return &Client{bus: bus, writer: csv.NewWriter(w)}
}

// Run blocks until ctx is cancelled, appending every matching message.
func (c *Client) Run(ctx context.Context) error {
	measureSub, err := c.bus.Subscribe(subject.SensorMeasurementAll)
	if err != nil {
		return fmt.Errorf("data logger: subscribe measurements: %w", err)
	}
	defer measureSub.Unsubscribe()

	signalSub, err := c.bus.Subscribe(subject.ActorCurrentSignalAll)
	if err != nil {
		return fmt.Errorf("data logger: subscribe current_signal: %w", err)
	}
	defer signalSub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		gotOne := false
		if msg, ok := measureSub.TryNext(); ok {
			c.appendReading(msg.Data)
			gotOne = true
		}
		if msg, ok := signalSub.TryNext(); ok {
			c.appendSignal(msg.Data)
			gotOne = true
		}

		if !gotOne {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollPause):
			}
		}
	}
}

func (c *Client) appendReading(data []byte) {
	reading, err := busclient.Decode[model.SensorReading](data)
	if err != nil {
		return
	}
	rec := model.DataRecord{
		ID:         reading.SensorID,
		LocalTS:    model.Now(),
		ExternalTS: reading.Timestamp,
		Value:      reading.Value,
		Err:        reading.Error,
	}
	c.appendRecord(rec)
}

func (c *Client) appendSignal(data []byte) {
	sig, err := busclient.Decode[model.ActorSignal](data)
	if err != nil {
		return
	}
	now := model.Now()
	rec := model.DataRecord{
		ID:         sig.Owner,
		LocalTS:    now,
		ExternalTS: now,
		Value:      &sig.Signal,
	}
	c.appendRecord(rec)
}

func (c *Client) appendRecord(rec model.DataRecord) {
	row := []string{
		string(rec.ID),
		strconv.FormatInt(int64(rec.LocalTS), 10),
		strconv.FormatInt(int64(rec.ExternalTS), 10),
		rec.MarshalValue(),
	}
	if err := c.writer.Write(row); err != nil {
		return
	}
	c.writer.Flush()
}
