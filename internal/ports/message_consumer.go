package ports

import "context"

// MessageConsumer — фоновый источник триггеров обновления (webhook-события из Kafka).
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
