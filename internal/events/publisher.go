package events

import "context"

// Publisher публикует события жизненного цикла для внешних потребителей
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher заглушка, используется когда публикация событий выключена
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
