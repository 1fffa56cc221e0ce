package busclient

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// natsConn is the production Conn backed by a real nats-server connection.
type natsConn struct {
	nc     *nats.Conn
	logger *logrus.Logger
}

// Options configures the connection: a URL, a stable client name, optional
// credentials and a shared logger.
type Options struct {
	URL      string
	Name     string
	User     string
	Password string
	Logger   *logrus.Logger
}

// Dial connects to the broker, registering reconnect/disconnect handlers
// that log through the shared logger.
func Dial(opts Options) (Conn, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("nats connection lost")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Debug("nats connection closed")
		}),
	}
	if opts.User != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.User, opts.Password))
	}

	nc, err := nats.Connect(opts.URL, natsOpts...)
	if err != nil {
		return nil, wrap(ErrConnect, fmt.Sprintf("dial %s", opts.URL), err)
	}

	logger.WithFields(logrus.Fields{
		"url":  opts.URL,
		"name": opts.Name,
	}).Info("bus connected")

	return &natsConn{nc: nc, logger: logger}, nil
}

func (c *natsConn) Publish(subject string, data []byte) error {
	if err := c.nc.Publish(subject, data); err != nil {
		return wrap(ErrPublish, subject, err)
	}
	return nil
}

func (c *natsConn) Subscribe(subj string) (Subscription, error) {
	ch := make(chan *nats.Msg, 64)
	sub, err := c.nc.ChanSubscribe(subj, ch)
	if err != nil {
		return nil, wrap(ErrSubscribe, subj, err)
	}
	return &natsSubscription{sub: sub, ch: ch}, nil
}

func (c *natsConn) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := c.nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, wrap(ErrRequest, subject, err)
	}
	return &Message{Subject: msg.Subject, Reply: msg.Reply, Data: msg.Data}, nil
}

func (c *natsConn) Close() {
	c.nc.Close()
}

type natsSubscription struct {
	sub *nats.Subscription
	ch  chan *nats.Msg
}

func (s *natsSubscription) Next(ctx context.Context) (*Message, error) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, wrap(ErrSubscribe, s.sub.Subject, nil)
		}
		return &Message{Subject: m.Subject, Reply: m.Reply, Data: m.Data}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *natsSubscription) TryNext() (*Message, bool) {
	select {
	case m, ok := <-s.ch:
		if !ok {
			return nil, false
		}
		return &Message{Subject: m.Subject, Reply: m.Reply, Data: m.Data}, true
	default:
		return nil, false
	}
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}
