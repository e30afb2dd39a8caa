package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBus publishes and subscribes to in-process race events. It satisfies
// both message.Publisher and message.Subscriber so it can back a router.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// Config tunes the in-process pub/sub.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64
	// BlockUntilAck makes Publish wait until every subscriber acked, which
	// keeps rendered output in publish order.
	BlockUntilAck bool
}

// eventBus implements EventBus on a watermill go channel pub/sub.
type eventBus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewEventBus creates an in-process event bus.
func NewEventBus(cfg Config, logger *slog.Logger) EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			BlockPublishUntilSubscriberAck: cfg.BlockUntilAck,
		},
		watermill.NewSlogLogger(logger),
	)
	return &eventBus{
		pubsub: pubsub,
		logger: logger,
	}
}

// Publish sends messages to every subscriber of topic.
func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			slog.String("topic", topic),
			slog.String("message_id", msg.UUID),
		)
	}

	if err := eb.pubsub.Publish(topic, messages...); err != nil {
		eb.logger.Error("Failed to publish message",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages published to topic.
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Debug("Subscribing to topic", slog.String("topic", topic))

	messages, err := eb.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

// Close stops every subscription. It is safe to call more than once.
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return nil
	}
	eb.closed = true

	if err := eb.pubsub.Close(); err != nil {
		eb.logger.Error("Error closing event bus", slog.Any("error", err))
		return fmt.Errorf("failed to close event bus: %w", err)
	}
	return nil
}
