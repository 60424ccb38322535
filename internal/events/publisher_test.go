package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-cart/internal/domain"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestPublishCartCheckedOut(t *testing.T) {
	ch := &fakeChannel{}
	p := NewChannelPublisher(ch, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	order := &domain.Order{ID: "order-1", Status: domain.OrderCreated, CartID: "cart-1"}
	req := domain.OrderRequest{
		CustomerID:    "cust-1",
		CartID:        "cart-1",
		ServiceType:   "delivery",
		PaymentMethod: "card",
		Currency:      "EUR",
		Lines: []domain.OrderLine{{
			ProductID: "p1", ProductType: domain.ProductBike, Quantity: 2,
			UnitPrice: decimal.RequireFromString("10.00"), Total: decimal.RequireFromString("23.80"),
		}},
		Totals: domain.PricingTotals{GrandTotal: decimal.RequireFromString("20.00"), Currency: "EUR"},
	}

	require.NoError(t, p.PublishCartCheckedOut(context.Background(), order, req))
	require.Len(t, ch.sent, 1)

	sent := ch.sent[0]
	assert.Equal(t, EventsExchange, sent.exchange)
	assert.Equal(t, CartCheckedOutRoutingKey, sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)

	var env EventEnvelope[CartCheckedOut]
	require.NoError(t, json.Unmarshal(sent.msg.Body, &env))
	require.NoError(t, env.Validate(CartCheckedOutEventName, 1))
	assert.Equal(t, sent.msg.MessageId, env.EventID)
	assert.Equal(t, "cart-1", env.PartitionKey)
	assert.Equal(t, "order-1", env.CorrelationID)
	assert.True(t, fixed.Equal(env.OccurredAt))
	assert.Equal(t, "order-1", env.Payload.OrderID)
	require.Len(t, env.Payload.Items, 1)
	assert.True(t, env.Payload.Items[0].Total.Equal(decimal.RequireFromString("23.80")))
}

func TestPublishCartCheckedOut_PropagatesChannelError(t *testing.T) {
	boom := errors.New("channel closed")
	p := NewChannelPublisher(&fakeChannel{err: boom}, nil)
	err := p.PublishCartCheckedOut(context.Background(), &domain.Order{ID: "o"}, domain.OrderRequest{CartID: "c"})
	assert.ErrorIs(t, err, boom)
}

func TestEnvelopeValidate(t *testing.T) {
	env := newEnvelope("Other", 2, "", "", time.Now(), struct{}{})
	assert.Error(t, env.Validate(CartCheckedOutEventName, 1))
	env.EventName = CartCheckedOutEventName
	assert.Error(t, env.Validate(CartCheckedOutEventName, 1))
	env.EventVersion = 1
	assert.EqualError(t, env.Validate(CartCheckedOutEventName, 1), "missing partitionKey")
}
