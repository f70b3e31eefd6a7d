package ports

import (
	"context"

	brokerdto "waste-collect/internal/pickup-service/core/domain/broker_dto"

	amqp "github.com/rabbitmq/amqp091-go"
)

type IPickupBroker interface {
	Close() error
	PushStatusEvent(ctx context.Context, event brokerdto.StatusEvent) error
	PushSettlementEvent(ctx context.Context, event brokerdto.SettlementEvent) error

	ConsumeStatusEvents(ctx context.Context, queue, consumerName string) (<-chan amqp.Delivery, error)
}
