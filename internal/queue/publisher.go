package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher delivers favorite events to the broker.
type Publisher interface {
	PublishFavorite(ctx context.Context, event FavoriteEvent) error
}

// NewPublisher returns an AMQP publisher for url, or a no-op publisher when
// url is empty.
func NewPublisher(url string, log zerolog.Logger) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{url: url, log: log, dial: dialBroker}
}

// dialTimeout bounds the TCP connect and the AMQP handshake of a publish.
const dialTimeout = 2 * time.Second

func dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishFavorite(context.Context, FavoriteEvent) error { return nil }

// AMQPPublisher publishes each event over a short-lived connection to
// RabbitMQ.  Errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
type AMQPPublisher struct {
	url  string
	log  zerolog.Logger
	dial func(url string) (*amqp.Connection, error)
}

// PublishFavorite publishes event to the favorites.activity queue as a
// persistent JSON message.
func (p *AMQPPublisher) PublishFavorite(ctx context.Context, event FavoriteEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(FavoritesQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", FavoritesQueueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("event_id", event.EventID).Msg("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
