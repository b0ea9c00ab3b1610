// Package events publishes order and reservation lifecycle events to a
// message broker for downstream consumers such as the kitchen display.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Routing keys. Kafka records carry them in the event_type header.
const (
	OrderPlaced        = "order.placed"
	OrderStatus        = "order.status"
	ReservationCreated = "reservation.created"
	ReservationStatus  = "reservation.status"
)

// RoutingKeys lists every key the application publishes.
var RoutingKeys = []string{OrderPlaced, OrderStatus, ReservationCreated, ReservationStatus}

// Event is the envelope every published message is wrapped in.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(routingKey string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

// Brokers selectable through configuration.
const (
	BrokerLog      = "log"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

type Options struct {
	Broker           string
	RabbitMQURL      string
	RabbitMQExchange string
	KafkaBrokers     []string
	KafkaTopic       string
}

// New builds the publisher for opts.Broker.
func New(opts Options) (Publisher, error) {
	switch opts.Broker {
	case "", BrokerLog:
		return NewLogPublisher(), nil
	case BrokerRabbitMQ:
		return NewRabbitPublisher(RabbitConfig{URL: opts.RabbitMQURL, Exchange: opts.RabbitMQExchange})
	case BrokerKafka:
		return NewKafkaPublisher(opts.KafkaBrokers, opts.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown event broker %q", opts.Broker)
	}
}
