package kafka

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// WriterProducer publishes through a shared kafka.Writer.
type WriterProducer struct {
	writer *kafka.Writer
}

func NewWriterProducer(brokers []string) *WriterProducer {
	return &WriterProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *WriterProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (p *WriterProducer) Close() error {
	return p.writer.Close()
}

// ConsoleProducer stands in for Kafka when no broker is configured, so the
// audit pipeline still produces visible output in development.
type ConsoleProducer struct{}

func NewConsoleProducer() *ConsoleProducer {
	log.Println("No Kafka brokers configured, audit logs go to the console")
	return &ConsoleProducer{}
}

func (p *ConsoleProducer) SendMessage(_ context.Context, topic string, key []byte, value []byte) error {
	log.Printf("audit [%s] %s: %s", topic, string(key), string(value))
	return nil
}

func (p *ConsoleProducer) Close() error {
	return nil
}
