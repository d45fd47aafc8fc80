// Package eventbroker publishes domain events to NATS
package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"Agora/internal/core/events"
)

// msgPublisher is the subset of *nats.Conn the publisher needs
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NatsPublisher implements events.Publisher on a NATS connection
type NatsPublisher struct {
	nc msgPublisher
}

// NewNatsPublisher wraps an established connection
func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Connect dials the broker with reconnects enabled for the process lifetime
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("agora"),
		nats.MaxReconnects(-1),
	)
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, evt events.PostCreated) error {
	return p.publish(ctx, events.SubjectPostCreated, evt.PostID, evt)
}

func (p *NatsPublisher) PublishPostDeleted(ctx context.Context, evt events.PostDeleted) error {
	return p.publish(ctx, events.SubjectPostDeleted, evt.PostID, evt)
}

func (p *NatsPublisher) PublishLikeToggled(ctx context.Context, evt events.LikeToggled) error {
	return p.publish(ctx, events.SubjectLikeToggled, evt.PostID, evt)
}

func (p *NatsPublisher) PublishCommentCreated(ctx context.Context, evt events.CommentCreated) error {
	return p.publish(ctx, events.SubjectCommentCreated, evt.CommentID, evt)
}

func (p *NatsPublisher) publish(ctx context.Context, subject, entityID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Content-Type", "application/json")
	if id, ok := hlog.IDFromCtx(ctx); ok {
		msg.Header.Set("X-Request-Id", id.String())
	}

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	zerolog.Ctx(ctx).Debug().Str("subject", subject).Str("id", entityID).Msg("event published")
	return nil
}
