package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jane-proxy-be/internal/dto"
	"jane-proxy-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerWritesAuditLog(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	store := newFakeStore()
	consumer := NewConsumerService(pubSub, "LICENSE_EVENTS", &fakeUowFactory{store: store})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("LICENSE_EVENTS", pubSub)

	evt := dto.LicenseEventMessage{
		EventType:  events.TypeLicenseUpdated,
		UserId:     "u-1",
		OrderId:    uuid.New(),
		Status:     "active",
		Product:    "jane-monthly",
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(store.auditSnapshot()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	logs := store.auditSnapshot()
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, events.TypeLicenseUpdated, entry.EventType)
	assert.Equal(t, "u-1", entry.UserId)
	require.NotNil(t, entry.Details)
	assert.JSONEq(t, string(payload), *entry.Details)
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	store := newFakeStore()
	consumer := NewConsumerService(pubSub, "LICENSE_EVENTS", &fakeUowFactory{store: store})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("LICENSE_EVENTS", pubSub)
	require.NoError(t, publisher.Publish(ctx, []byte("{not json")))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, store.auditSnapshot())
}
