package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Emitter announces mapping lifecycle changes. Emission is best effort:
// failures are logged and never reported to the caller.
type Emitter interface {
	MappingCreated(ctx context.Context, m *shortener.Mapping, shortURL string, custom bool)
	MappingDeleted(ctx context.Context, owner shortener.OwnerID, code shortener.Code)
}

// Publisher emits events through a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPublisher creates an Emitter backed by publisher.
func NewPublisher(publisher message.Publisher, logger *zap.Logger) *Publisher {
	return &Publisher{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Publisher) MappingCreated(ctx context.Context, m *shortener.Mapping, shortURL string, custom bool) {
	p.publish(ctx, TopicMappingCreated, m.Owner, m.Code, &MappingCreated{
		ID:        m.ID.String(),
		Owner:     string(m.Owner),
		Code:      string(m.Code),
		LongURL:   m.LongURL,
		ShortURL:  shortURL,
		Custom:    custom,
		CreatedAt: m.CreatedAt,
	})
}

func (p *Publisher) MappingDeleted(ctx context.Context, owner shortener.OwnerID, code shortener.Code) {
	p.publish(ctx, TopicMappingDeleted, owner, code, &MappingDeleted{
		Owner:     string(owner),
		Code:      string(code),
		DeletedAt: p.now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, topic string, owner shortener.OwnerID, code shortener.Code, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event", zap.String("topic", topic), zap.Error(err))

		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("owner", string(owner))
	msg.Metadata.Set("code", string(code))
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("owner", string(owner)),
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
}

// Shutdown closes the underlying publisher.
func (p *Publisher) Shutdown() error {
	return p.publisher.Close()
}

// Discard is an Emitter that drops every event.
type Discard struct{}

func (Discard) MappingCreated(context.Context, *shortener.Mapping, string, bool)   {}
func (Discard) MappingDeleted(context.Context, shortener.OwnerID, shortener.Code) {}

// Compile-time checks.
var (
	_ Emitter = (*Publisher)(nil)
	_ Emitter = Discard{}
)
