package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/segmentio/kafka-go"
)

// SyncCompletedEvent is the wire shape published after a provider sync.
type SyncCompletedEvent struct {
	EventID      string    `json:"event_id"`
	Provider     string    `json:"provider"`
	Status       string    `json:"status"`
	DaysCount    int       `json:"days_count"`
	RecordsCount int64     `json:"records_count"`
	SyncedAt     time.Time `json:"synced_at"`
}

// KafkaPublisher emits sync events to a Kafka topic, keyed by provider so
// consumers see one provider's events in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PublishSyncCompleted(ctx context.Context, run domain.SyncRun) error {
	event := SyncCompletedEvent{
		EventID:      uuid.NewString(),
		Provider:     run.Provider,
		Status:       run.Status,
		DaysCount:    run.DaysCount,
		RecordsCount: run.RecordsCount,
		SyncedAt:     run.SyncedAt,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sync event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(run.Provider),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish sync event for %s: %w", run.Provider, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is the fallback when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSyncCompleted(context.Context, domain.SyncRun) error { return nil }

func (NoopPublisher) Close() error { return nil }

var _ ports.EventPublisher = (*KafkaPublisher)(nil)
var _ ports.EventPublisher = NoopPublisher{}
