package bm

import (
	"context"

	brokerdto "waste-collect/internal/pickup-service/core/domain/broker_dto"
	"waste-collect/internal/pickup-service/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Nop is a broker that drops every event. Used by the simulator and tests
// where no RabbitMQ is running.
type Nop struct{}

func NewNop() ports.IPickupBroker { return Nop{} }

func (Nop) Close() error { return nil }

func (Nop) PushStatusEvent(ctx context.Context, event brokerdto.StatusEvent) error { return nil }

func (Nop) PushSettlementEvent(ctx context.Context, event brokerdto.SettlementEvent) error {
	return nil
}

func (Nop) ConsumeStatusEvents(ctx context.Context, queue, consumerName string) (<-chan amqp.Delivery, error) {
	ch := make(chan amqp.Delivery)
	close(ch)
	return ch, nil
}
