package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

type RabbitConfig struct {
	URL      string
	Exchange string
	// Retries is how many times the initial dial is attempted.
	Retries int
}

// RabbitPublisher publishes to a durable topic exchange with one durable
// queue bound per routing key.
type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  RabbitConfig
}

// QueueName is the queue bound to routingKey.
func QueueName(routingKey string) string {
	return routingKey + ".queue"
}

func NewRabbitPublisher(config RabbitConfig) (*RabbitPublisher, error) {
	if config.Exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}
	if config.Retries <= 0 {
		config.Retries = 5
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < config.Retries; i++ {
		conn, err = amqp.Dial(config.URL)
		if err == nil {
			break
		}
		retryTime := time.Duration(i*i)*time.Second + time.Second
		log.Warn().Err(err).Dur("retry_in", retryTime).Msg("failed to connect to RabbitMQ")
		time.Sleep(retryTime)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel, config.Exchange); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitPublisher{conn: conn, channel: channel, config: config}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	for _, key := range RoutingKeys {
		q, err := ch.QueueDeclare(
			QueueName(key), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			nil,            // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", QueueName(key), err)
		}
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to exchange %s: %w", q.Name, exchange, err)
		}
		log.Debug().Str("queue", q.Name).Str("routing_key", key).Msg("queue bound")
	}
	return nil
}

// publishing wraps an event in a persistent JSON message.
func publishing(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	msg, err := publishing(NewEvent(routingKey, payload))
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.config.Exchange, // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to exchange %s with routing key %s: %w",
			p.config.Exchange, routingKey, err)
	}

	log.Debug().Str("exchange", p.config.Exchange).Str("routing_key", routingKey).Msg("event published")
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
