package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/STY-ReservationService/internal/events"
)

// envelope обертка события для сериализации в Kafka
type envelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	BookingID  int64           `json:"booking_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher публикует события жизненного цикла бронирований в Kafka
// Ключ сообщения - ID бронирования, что дает упорядоченность событий
// одного бронирования внутри партиции
type EventPublisher struct {
	producer *Producer
	topic    string
}

// NewEventPublisher создает publisher поверх producer
func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish сериализует событие и отправляет его в топик
func (p *EventPublisher) Publish(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka publisher: failed to marshal %s: %w", event.EventName(), err)
	}

	env := envelope{
		EventID:    uuid.NewString(),
		EventName:  event.EventName(),
		BookingID:  event.BookingID(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka publisher: failed to marshal envelope: %w", err)
	}

	key := strconv.FormatInt(event.BookingID(), 10)
	headers := map[string]string{"event_name": event.EventName()}

	if err := p.producer.Publish(p.topic, key, data, headers); err != nil {
		return fmt.Errorf("kafka publisher: failed to publish %s: %w", event.EventName(), err)
	}

	return nil
}
