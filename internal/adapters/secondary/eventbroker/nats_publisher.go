package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

const (
	SubjectPostCreated = "board.post.created"
	SubjectPostDeleted = "board.post.deleted"
)

// MsgPublisher est le sous-ensemble de *nats.Conn utilisé ici.
type MsgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type NatsPublisher struct {
	nc MsgPublisher
}

func NewNatsPublisher(nc MsgPublisher) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

var _ ports.EventPublisher = (*NatsPublisher)(nil)

// Contrat implicite avec les abonnés
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostDeletedEvent struct {
	ID string `json:"id"`
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, PostCreatedEvent{
		ID:        post.ID,
		Body:      post.Body,
		CreatedAt: post.CreatedAt,
	})
}

func (p *NatsPublisher) PublishPostDeleted(ctx context.Context, postID string) error {
	return p.publish(ctx, SubjectPostDeleted, PostDeletedEvent{ID: postID})
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Injection du trace context dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.Debug("Publishing event", "subject", subject)
	return p.nc.PublishMsg(msg)
}

// NopPublisher est utilisé quand NATS_URL est vide.
type NopPublisher struct{}

func (NopPublisher) PublishPostCreated(context.Context, *domain.Post) error { return nil }
func (NopPublisher) PublishPostDeleted(context.Context, string) error       { return nil }
