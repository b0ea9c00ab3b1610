package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher produces every event to one topic, keyed by routing key so
// each event kind keeps its order within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func record(topic string, ev Event) (*kgo.Record, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(ev.Type),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "version", Value: []byte("1.0")},
		},
		Timestamp: ev.OccurredAt,
	}, nil
}

// Publish hands the record to the producer and returns; delivery failures
// are logged from the produce callback. The record is detached from ctx
// cancellation so it survives the request that published it.
func (p *KafkaPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	rec, err := record(p.topic, NewEvent(routingKey, payload))
	if err != nil {
		return err
	}
	p.client.Produce(context.WithoutCancel(ctx), rec, func(r *kgo.Record, err error) {
		if err != nil {
			log.Error().Err(err).Str("routing_key", routingKey).Msg("failed to produce event")
			return
		}
		log.Debug().Str("routing_key", routingKey).Int32("partition", r.Partition).Int64("offset", r.Offset).Msg("event produced")
	})
	return nil
}

// Close flushes buffered records before closing the client.
func (p *KafkaPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}
