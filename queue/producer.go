package queue

import (
	"encoding/json"
	"fmt"

	"aibc/types"

	"github.com/IBM/sarama"
)

// DefaultTopic is the downstream agent queue topic
const DefaultTopic = "agent-signals"

// Producer publishes routed signal envelopes to the agent queue
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a synchronous Kafka producer for envelope delivery
func NewProducer(config ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	topic := config.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	return &Producer{producer: producer, topic: topic}, nil
}

// Publish delivers one envelope. Messages are keyed by agent ID so each
// agent's deliveries stay ordered within a partition.
func (p *Producer) Publish(env types.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(env.AgentID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish envelope: %w", err)
	}
	return nil
}

// PublishAll delivers a batch of envelopes, returning the number published
// and the first error encountered. Delivery continues past individual
// failures so one bad envelope cannot starve the rest of the batch.
func (p *Producer) PublishAll(envelopes []types.Envelope) (int, error) {
	published := 0
	var firstErr error

	for _, env := range envelopes {
		if err := p.Publish(env); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		published++
	}

	return published, firstErr
}

// Close shuts down the underlying producer
func (p *Producer) Close() error {
	return p.producer.Close()
}
