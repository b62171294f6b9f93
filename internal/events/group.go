package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// TopicConsumer consumes one event topic between Start and Shutdown.
type TopicConsumer interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// Group runs the mapping event consumers sharing one subscriber.
type Group struct {
	consumers  []TopicConsumer
	subscriber message.Subscriber
	logger     *zap.Logger
}

// NewGroup creates an empty consumer group.
func NewGroup(subscriber message.Subscriber, logger *zap.Logger) *Group {
	return &Group{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer with the group.
func (g *Group) Add(consumer TopicConsumer) {
	g.consumers = append(g.consumers, consumer)
}

// Topics lists the topics of the registered consumers in registration order.
func (g *Group) Topics() []string {
	topics := make([]string, 0, len(g.consumers))
	for _, consumer := range g.consumers {
		topics = append(topics, consumer.Topic())
	}

	return topics
}

// Start starts every consumer. If one fails, the consumers already started
// are shut down again and the failing topic is reported.
func (g *Group) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = g.consumers[j].Shutdown()
			}

			return fmt.Errorf("start consumer for %s: %w", consumer.Topic(), err)
		}

		g.logger.Debug("consumer started", zap.String("topic", consumer.Topic()))
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.Topics()))

	return nil
}

// Shutdown stops every consumer and closes the subscriber, joining all errors.
func (g *Group) Shutdown() error {
	g.logger.Info("shutting down consumer group", zap.Strings("topics", g.Topics()))

	var errs []error

	for _, consumer := range g.consumers {
		if err := consumer.Shutdown(); err != nil {
			g.logger.Error("consumer shutdown failed", zap.String("topic", consumer.Topic()), zap.Error(err))
			errs = append(errs, fmt.Errorf("shut down consumer for %s: %w", consumer.Topic(), err))
		}
	}

	if err := g.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}

	return errors.Join(errs...)
}
