package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// ActivityEvent is the message published for every stored audit entry
type ActivityEvent struct {
	Type string                   `json:"type"`
	Log  *models.AdminActivityLog `json:"log"`
}

// Publisher publishes admin activity events to JetStream
type Publisher struct {
	client *Client
	logger *logrus.Entry
}

// NewPublisher creates a new activity event publisher. A nil client yields a
// publisher that skips every event.
func NewPublisher(client *Client, logger *logrus.Entry) *Publisher {
	return &Publisher{
		client: client,
		logger: logger.WithField("component", "activity_publisher"),
	}
}

// Subject returns the subject an action is published on
func Subject(action models.AdminAction) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, strings.ToLower(string(action)))
}

// PublishActivity publishes one audit entry
func (p *Publisher) PublishActivity(ctx context.Context, entry *models.AdminActivityLog) error {
	if p.client == nil || !p.client.IsConnected() {
		p.logger.Debug("NATS not connected, skipping event publish")
		return nil
	}

	data, err := json.Marshal(ActivityEvent{Type: "created", Log: entry})
	if err != nil {
		return fmt.Errorf("failed to marshal activity event: %w", err)
	}

	subject := Subject(entry.Action)
	ack, err := p.client.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(entry.ID.String()))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"subject":  subject,
		"sequence": ack.Sequence,
		"stream":   ack.Stream,
	}).Debug("published activity event")

	return nil
}
