// Package logclient subscribes to the broadcast log.> subject and fans each
// message out to a local sink at the level named by the subject's second
// token. Unknown levels are reported as errors on the same sink rather than
// dropped.
package logclient

import (
	"context"
	"fmt"

	"github.com/bryggansbryggeri/bryggio-go/internal/busclient"
	"github.com/bryggansbryggeri/bryggio-go/internal/model"
	"github.com/bryggansbryggeri/bryggio-go/internal/subject"
	"github.com/sirupsen/logrus"
)

// Client is the log sink worker; it consumes log.> in strictly-serial order
// via a blocking Next, matching the supervisor's command loop's blocking
// consumer shape.
type Client struct {
	bus    busclient.Conn
	sink   *logrus.Logger
}

func NewClient(bus busclient.Conn, sink *logrus.Logger) *Client {
	return &Client{bus: bus, sink: sink}
}

// Run blocks until ctx is cancelled or the subscription errors out.
func (c *Client) Run(ctx context.Context) error {
	sub, err := c.bus.Subscribe(subject.LogAll)
	if err != nil {
		return fmt.Errorf("log client: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("log client: %w", err)
		}
		c.dispatch(msg.Subject, msg.Data)
	}
}

func (c *Client) dispatch(subj string, data []byte) {
	parsed, err := subject.Parse(subj)
	if err != nil || parsed.Kind != subject.KindLog {
		c.sink.WithField("subject", subj).Error("log client: unroutable subject")
		return
	}

	entry, derr := busclient.Decode[model.LogMessage](data)
	if derr != nil {
		c.sink.WithError(derr).Error("log client: undecodable payload")
		return
	}

	logEntry := c.sink.WithField("origin", entry.Origin)
	switch parsed.Verb {
	case "debug":
		logEntry.Debug(entry.Message)
	case "info":
		logEntry.Info(entry.Message)
	case "warning":
		logEntry.Warn(entry.Message)
	case "error":
		logEntry.Error(entry.Message)
	default:
		logEntry.WithField("level", parsed.Verb).Error(entry.Message)
	}
}
