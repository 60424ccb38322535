package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch      Channel
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewPublisher opens a channel on conn and declares the events exchange.
func NewPublisher(conn *amqp.Connection, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}
	return NewChannelPublisher(ch, logger), nil
}

// NewChannelPublisher wraps an already prepared channel.
func NewChannelPublisher(ch Channel, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ch: ch, logger: logger, timeout: 3 * time.Second, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishCartCheckedOut(ctx context.Context, o *domain.Order, req domain.OrderRequest) error {
	env := newEnvelope(CartCheckedOutEventName, 1, req.CartID, o.ID, p.now(), cartCheckedOutFrom(o, req))
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", CartCheckedOutEventName, err)
	}
	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, env.EventID, body); err != nil {
		return err
	}
	p.logger.Info("event published",
		zap.String("event", CartCheckedOutEventName),
		zap.String("event_id", env.EventID),
		zap.String("order_id", o.ID))
	return nil
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
}
