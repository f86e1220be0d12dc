package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/config"
)

const (
	// StreamName is the JetStream stream holding admin activity events
	StreamName = "ADMIN_ACTIVITY"
	// SubjectPrefix prefixes every admin activity subject
	SubjectPrefix = "admin.activity"
)

// Client wraps the NATS connection and JetStream context
type Client struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewClient connects to NATS and makes sure the activity stream exists
func NewClient(cfg config.NATSConfig, logger *logrus.Entry) (*Client, error) {
	log := logger.WithField("component", "nats")

	opts := []nats.Option{
		nats.Name("tenancy-service"),
		nats.Timeout(10 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.WithError(err).Error("async error")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{conn: conn, js: js, logger: log}

	if err := client.ensureStream(); err != nil {
		log.WithError(err).Warn("failed to ensure activity stream")
	}

	log.WithField("url", cfg.URL).Info("connected to NATS")
	return client, nil
}

// Close drains and closes the connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Drain()
		c.conn.Close()
	}
}

// IsConnected returns true if connected to NATS
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

func (c *Client) ensureStream() error {
	streamCfg := nats.StreamConfig{
		Name:        StreamName,
		Description: "Administrative activity on tenants, trials and subscriptions",
		Subjects:    []string{SubjectPrefix + ".>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxMsgs:     100000,
		Discard:     nats.DiscardOld,
		Replicas:    1,
	}

	_, err := c.js.StreamInfo(streamCfg.Name)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		if _, err := c.js.AddStream(&streamCfg); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		c.logger.WithField("stream", StreamName).Info("created stream")
	case err != nil:
		return fmt.Errorf("failed to check stream: %w", err)
	}

	return nil
}
