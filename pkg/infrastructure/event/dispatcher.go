package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/service"
)

const publishTimeout = 5 * time.Second

// LogDispatcher writes events to the log. Used when no broker is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(event service.Event) error {
	log.WithField("event", event.Type()).WithField("payload", event).Info("domain event")
	return nil
}

// AMQPDispatcher publishes events as JSON to a topic exchange, routed by event type.
type AMQPDispatcher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPDispatcher(url, exchange string) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to declare exchange %s", exchange)
	}
	return &AMQPDispatcher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (d *AMQPDispatcher) Dispatch(event service.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to encode event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = d.channel.PublishWithContext(ctx, d.exchange, event.Type(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Type:         event.Type(),
		Body:         body,
	})
	if err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to publish event")
		return errors.Wrap(err, "failed to publish event")
	}
	return nil
}

func (d *AMQPDispatcher) Close() error {
	if err := d.channel.Close(); err != nil {
		log.WithError(err).Warn("failed to close broker channel")
	}
	return d.conn.Close()
}
