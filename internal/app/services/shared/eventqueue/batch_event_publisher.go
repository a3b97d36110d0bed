package eventqueue

import (
	"context"
	"fmt"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type batchEventPublisher struct {
	ch         publishChannel
	confirms   <-chan amqp.Confirmation
	exchange   string
	routingKey string
	log        *zap.Logger
	mu         sync.Mutex
}

// NewBatchEventPublisher declares a durable topic exchange and publishes
// persistent, confirmed batch events on it.
func NewBatchEventPublisher(conn *amqp.Connection, exchange, routingKey string, log *zap.Logger) (contracts.BatchEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
	if err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return &batchEventPublisher{
		ch:         ch,
		confirms:   ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		exchange:   exchange,
		routingKey: routingKey,
		log:        log,
	}, nil
}

func (p *batchEventPublisher) Publish(ctx context.Context, event *models.BatchEvent) error {
	requestID := utils.GetRequestID(ctx)
	p.log.Info("batchEventPublisher.Publish called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBatchIDKey, event.BatchID),
		zap.String(constvars.LoggingEventNameKey, event.Event),
		zap.String(constvars.LoggingQueueKey, p.exchange),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:   constvars.MIMEApplicationJSON,
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		CorrelationId: requestID,
		Timestamp:     event.OccurredAt,
		Type:          event.Event,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		return exceptions.ErrPublishEvent(err, event.Event)
	}

	select {
	case confirmed := <-p.confirms:
		if !confirmed.Ack {
			return exceptions.ErrPublishEvent(fmt.Errorf("message not confirmed"), event.Event)
		}
	case <-ctx.Done():
		return exceptions.ErrPublishEvent(ctx.Err(), event.Event)
	}
	return nil
}

type noopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher is used when messaging is disabled.
func NewNoopPublisher(log *zap.Logger) contracts.BatchEventPublisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) Publish(ctx context.Context, event *models.BatchEvent) error {
	p.log.Debug("noopPublisher.Publish skipped",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingBatchIDKey, event.BatchID),
	)
	return nil
}
