package eventqueue

import (
	"context"
	"errors"
	"qlinme-service/internal/app/models"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	confirms  chan amqp.Confirmation
	ack       bool
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, exchange+":"+key)
	f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: f.ack}
	return nil
}

func newTestPublisher(ack bool, err error) (*batchEventPublisher, *fakeChannel) {
	ch := &fakeChannel{confirms: make(chan amqp.Confirmation, 1), ack: ack, err: err}
	return &batchEventPublisher{
		ch:         ch,
		confirms:   ch.confirms,
		exchange:   "clin",
		routingKey: "batch.metadata",
		log:        zap.NewNop(),
	}, ch
}

func testEvent() *models.BatchEvent {
	return &models.BatchEvent{
		Event:      constvars.EventBatchMetadataSaved,
		BatchID:    "201106_A00516_0169_AHFM3HDSXY",
		Schema:     "CQGC_Germline",
		Analyses:   3,
		OccurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBatchEventPublisher_Publish(t *testing.T) {
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

	t.Run("confirmed", func(t *testing.T) {
		p, ch := newTestPublisher(true, nil)

		require.NoError(t, p.Publish(ctx, testEvent()))

		require.Len(t, ch.published, 1)
		assert.Equal(t, []string{"clin:batch.metadata"}, ch.keys)
		msg := ch.published[0]
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
		assert.Equal(t, "req-1", msg.CorrelationId)
		assert.Equal(t, constvars.EventBatchMetadataSaved, msg.Type)

		var decoded models.BatchEvent
		require.NoError(t, json.Unmarshal(msg.Body, &decoded))
		assert.Equal(t, *testEvent(), decoded)
	})

	t.Run("nacked", func(t *testing.T) {
		p, _ := newTestPublisher(false, nil)
		err := p.Publish(ctx, testEvent())
		require.Error(t, err)
		assert.Equal(t, constvars.StatusInternalServerError, exceptions.StatusCodeOf(err))
	})

	t.Run("channel closed", func(t *testing.T) {
		p, _ := newTestPublisher(true, amqp.ErrClosed)
		err := p.Publish(ctx, testEvent())
		require.Error(t, err)
		assert.True(t, errors.Is(err, amqp.ErrClosed))
	})

	t.Run("noop", func(t *testing.T) {
		assert.NoError(t, NewNoopPublisher(zap.NewNop()).Publish(ctx, testEvent()))
	})
}
