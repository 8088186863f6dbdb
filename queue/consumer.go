package queue

import (
	"context"
	"encoding/json"
	"log"

	"aibc/types"

	"github.com/IBM/sarama"
)

// EnvelopeHandler processes one routed signal envelope. Returning an error
// or shouldMark=false leaves the message unmarked so it can be retried.
type EnvelopeHandler interface {
	HandleEnvelope(ctx context.Context, env types.Envelope) (shouldMark bool, err error)
}

// Consumer reads envelopes off the agent queue and hands them to a handler
type Consumer struct {
	consumer sarama.ConsumerGroup
	handler  EnvelopeHandler
	topic    string
	groupID  string
	ready    chan bool
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler EnvelopeHandler
}

// NewConsumer creates a consumer-group client for the agent queue
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	topic := config.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		consumer: client,
		handler:  config.Handler,
		topic:    topic,
		groupID:  config.GroupID,
		ready:    make(chan bool),
	}, nil
}

// Start begins consuming envelopes; it returns once the group session is ready
func (c *Consumer) Start(ctx context.Context) error {
	handler := &groupHandler{
		envelopeHandler: c.handler,
		ready:           c.ready,
	}

	go func() {
		for {
			if err := c.consumer.Consume(ctx, []string{c.topic}, handler); err != nil {
				if err == context.Canceled {
					log.Println("Agent queue consumer context canceled")
					return
				}
				log.Printf("Error from agent queue consumer: %v", err)
			}

			if ctx.Err() != nil {
				return
			}
			handler.ready = make(chan bool)
		}
	}()

	<-c.ready
	log.Printf("Agent queue consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.consumer.Errors() {
			log.Printf("Agent queue consumer error: %v", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the consumer
func (c *Consumer) Close() error {
	log.Println("Closing agent queue consumer...")
	return c.consumer.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler
type groupHandler struct {
	envelopeHandler EnvelopeHandler
	ready           chan bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim runs the consume loop for one claim, decoding each message
// into an envelope before delegating to the handler
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			var env types.Envelope
			if err := json.Unmarshal(message.Value, &env); err != nil {
				log.Printf("Skipping undecodable envelope at offset %d: %v", message.Offset, err)
				// Mark so a poison message cannot wedge the partition
				session.MarkMessage(message, "")
				continue
			}

			shouldMark, err := h.envelopeHandler.HandleEnvelope(session.Context(), env)
			if err != nil {
				log.Printf("Failed to handle envelope for %s: %v", env.AgentID, err)
			}
			if shouldMark {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}
