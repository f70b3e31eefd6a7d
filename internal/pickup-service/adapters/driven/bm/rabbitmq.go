package bm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"waste-collect/internal/config"
	"waste-collect/internal/mylogger"
	brokerdto "waste-collect/internal/pickup-service/core/domain/broker_dto"
	"waste-collect/internal/pickup-service/core/myerrors"
	"waste-collect/internal/pickup-service/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchange       = "pickup_topic"
	reconnInterval = 10

	StatusQueue     = "pickup_status"
	SettlementQueue = "pickup_settlements"
)

// queueBindings is the broker topology: declared and bound on every connect
// so consumers find their queues even on a fresh broker.
var queueBindings = map[string]string{
	StatusQueue:     "pickup.status.*",
	SettlementQueue: "pickup.settled",
}

type RabbitMQ struct {
	ctx          context.Context
	cfg          config.RabbitMqconfig
	mylog        mylogger.Logger
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
	mu           *sync.Mutex
}

// New creates the RabbitMQ adapter publishing to the pickup topic exchange.
func New(ctx context.Context, rabbitmqCfg config.RabbitMqconfig, mylog mylogger.Logger) (ports.IPickupBroker, error) {
	r := &RabbitMQ{
		ctx:   ctx,
		cfg:   rabbitmqCfg,
		mylog: mylog,
		mu:    &sync.Mutex{},
	}
	if err := r.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %v", err)
	}
	return r, nil
}

func (r *RabbitMQ) PushStatusEvent(ctx context.Context, event brokerdto.StatusEvent) error {
	routingKey := fmt.Sprintf("pickup.status.%s", event.Status)
	return r.publish(ctx, routingKey, event.CorrelationID, event)
}

func (r *RabbitMQ) PushSettlementEvent(ctx context.Context, event brokerdto.SettlementEvent) error {
	return r.publish(ctx, "pickup.settled", event.PickupID, event)
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey, correlationID string, message any) error {
	mylog := r.mylog.Action("publish")

	if r.conn.IsClosed() {
		mylog.Error("connection to rabbitmq is closed", myerrors.ErrBrokerUnavailable)
		go r.reconnect(r.ctx)
		return myerrors.ErrBrokerUnavailable
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		Body:          body,
	})
}

func (r *RabbitMQ) ConsumeStatusEvents(ctx context.Context, queue, consumerName string) (<-chan amqp.Delivery, error) {
	return r.ch.ConsumeWithContext(ctx, queue, consumerName, false, false, false, false, nil)
}

func (r *RabbitMQ) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return false
	}
	if r.ch == nil || r.ch.IsClosed() {
		return false
	}
	return true
}

func (r *RabbitMQ) Close() error {
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %v", err)
		}
	}

	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %v", err)
		}
	}
	return nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%v:%v@%v:%v/%v",
		r.cfg.User,
		r.cfg.Password,
		r.cfg.Host,
		r.cfg.Port,
		r.cfg.VHost,
	))
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	r.conn = conn
	r.ch = ch
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	for queue, bindingKey := range queueBindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, bindingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}
	return nil
}

func (r *RabbitMQ) reconnect(ctx context.Context) {
	r.mu.Lock()
	if r.reconnecting {
		r.mu.Unlock()
		return
	}
	r.reconnecting = true
	r.mu.Unlock()

	t := time.NewTicker(time.Second * reconnInterval)
	mylog := r.mylog.Action("mb_reconnecting")

	for {
		select {
		case <-t.C:
			if err := r.connect(); err == nil {
				t.Stop()
				mylog.Info("successfully reconnected")
				r.mu.Lock()
				r.reconnecting = false
				r.mu.Unlock()
				return
			}
			mylog.Info("rabbitmq failed to reconnect")

		case <-ctx.Done():
			t.Stop()
			return
		}
	}
}
