package notification

import (
	"context"
	"encoding/json"
	"sync"

	"waste-collect/internal/mylogger"
	"waste-collect/internal/pickup-service/adapters/driven/bm"
	brokerdto "waste-collect/internal/pickup-service/core/domain/broker_dto"
	websocketdto "waste-collect/internal/pickup-service/core/domain/websocket_dto"
	"waste-collect/internal/pickup-service/core/ports"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// websocket event types
	pickupStatusUpdate = "pickup_status_update"
	settlementUpdate   = "settlement_update"
)

// Notification consumes broker events and forwards them to the requester's
// websocket session. Delivery is best-effort: a requester without an open
// session simply misses the push.
type Notification struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	log        mylogger.Logger
	dispatcher ports.INotifyWebsocket
	consumer   ports.IPickupBroker
}

func New(
	ctx context.Context,
	wg *sync.WaitGroup,
	log mylogger.Logger,
	dispatcher ports.INotifyWebsocket,
	consumer ports.IPickupBroker,
) *Notification {
	return &Notification{
		ctx:        ctx,
		wg:         wg,
		log:        log,
		dispatcher: dispatcher,
		consumer:   consumer,
	}
}

func (n *Notification) Run() error {
	chStatus, err := n.consumer.ConsumeStatusEvents(n.ctx, bm.StatusQueue, "")
	if err != nil {
		return err
	}

	chSettlement, err := n.consumer.ConsumeStatusEvents(n.ctx, bm.SettlementQueue, "")
	if err != nil {
		return err
	}

	n.wg.Add(2)
	go n.work(n.ctx, chStatus, n.StatusUpdate)
	go n.work(n.ctx, chSettlement, n.SettlementUpdate)

	return nil
}

func (n *Notification) work(
	ctx context.Context,
	ch <-chan amqp091.Delivery,
	do func(msg amqp091.Delivery) error,
) {
	log := n.log.Action("work")
	defer func() {
		log.Info("notification worker is done")
		n.wg.Done()
	}()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := do(msg); err != nil {
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

func (n *Notification) StatusUpdate(msg amqp091.Delivery) error {
	log := n.log.Action("StatusUpdate")

	var event brokerdto.StatusEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("cannot unmarshal status event", err)
		msg.Nack(false, false)
		return err
	}

	payload, err := json.Marshal(websocketdto.PickupStatusUpdateDto{
		PickupID:      event.PickupID,
		PickupNumber:  event.PickupNumber,
		Status:        event.Status,
		DriverID:      event.DriverID,
		CorrelationID: event.CorrelationID,
	})
	if err != nil {
		msg.Nack(false, false)
		return err
	}

	n.dispatcher.WriteToUser(event.RequesterID, websocketdto.Event{
		Type: pickupStatusUpdate,
		Data: payload,
	})

	return msg.Ack(false)
}

func (n *Notification) SettlementUpdate(msg amqp091.Delivery) error {
	log := n.log.Action("SettlementUpdate")

	var event brokerdto.SettlementEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("cannot unmarshal settlement event", err)
		msg.Nack(false, false)
		return err
	}

	payload, err := json.Marshal(websocketdto.SettlementUpdateDto{
		PickupID:         event.PickupID,
		PointsEarned:     event.PointsEarned,
		CommissionAmount: event.CommissionAmount,
		CompletedAt:      event.CompletedAt,
	})
	if err != nil {
		msg.Nack(false, false)
		return err
	}

	n.dispatcher.WriteToUser(event.RequesterID, websocketdto.Event{
		Type: settlementUpdate,
		Data: payload,
	})

	return msg.Ack(false)
}
