// Package events announces template lifecycle changes so parsing workers can
// refresh their set of active templates.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

const DefaultSubject = "regexflow.templates"

type TemplateEvent struct {
	TemplateID     string                `json:"templateId"`
	BankName       string                `json:"bankName"`
	PreviousStatus models.TemplateStatus `json:"previousStatus,omitempty"`
	Status         models.TemplateStatus `json:"status"`
	PerformedBy    string                `json:"performedBy"`
	OccurredAt     time.Time             `json:"occurredAt"`
}

type Publisher interface {
	PublishTemplateEvent(ctx context.Context, ev TemplateEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher publishes each event on "<subject>.<status>", e.g. regexflow.templates.ACTIVE.
func NewNATSPublisher(conn *nats.Conn, subject string) *natsPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &natsPublisher{conn: conn, subject: subject}
}

func (p *natsPublisher) PublishTemplateEvent(ctx context.Context, ev TemplateEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject+"."+string(ev.Status), data); err != nil {
		logger.FromContext(ctx).Warn("template event publish failed", "template_id", ev.TemplateID, "error", err)
		return err
	}
	return nil
}

// Nop drops events; used when no NATS server is configured.
type Nop struct{}

func (Nop) PublishTemplateEvent(context.Context, TemplateEvent) error { return nil }
