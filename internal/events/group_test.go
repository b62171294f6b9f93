package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockRunnable struct {
	topic       string
	started     bool
	shutdown    bool
	startErr    error
	shutdownErr error
}

func (m *mockRunnable) Topic() string {
	return m.topic
}

func (m *mockRunnable) Start(_ context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockRunnable) Shutdown() error {
	m.shutdown = true

	return m.shutdownErr
}

func TestGroup_Start(t *testing.T) {
	t.Run("starts all consumers", func(t *testing.T) {
		group := events.NewGroup(newMockSubscriber(), zap.NewNop())
		first, second := &mockRunnable{}, &mockRunnable{}
		group.Add(first)
		group.Add(second)

		require.NoError(t, group.Start(context.Background()))
		assert.True(t, first.started)
		assert.True(t, second.started)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		group := events.NewGroup(newMockSubscriber(), zap.NewNop())
		first := &mockRunnable{topic: events.TopicMappingCreated}
		second := &mockRunnable{topic: events.TopicMappingDeleted, startErr: errMock}
		group.Add(first)
		group.Add(second)

		err := group.Start(context.Background())

		require.ErrorIs(t, err, errMock)
		assert.ErrorContains(t, err, events.TopicMappingDeleted)
		assert.True(t, first.shutdown)
		assert.False(t, second.started)
	})
}

func TestGroup_Shutdown(t *testing.T) {
	t.Run("shuts down all consumers and the subscriber", func(t *testing.T) {
		sub := newMockSubscriber()
		group := events.NewGroup(sub, zap.NewNop())
		first, second := &mockRunnable{}, &mockRunnable{}
		group.Add(first)
		group.Add(second)

		require.NoError(t, group.Shutdown())
		assert.True(t, first.shutdown)
		assert.True(t, second.shutdown)
		assert.True(t, sub.closed)
	})

	t.Run("joins errors but shuts down all", func(t *testing.T) {
		sub := newMockSubscriber()
		sub.closeErr = errMock
		group := events.NewGroup(sub, zap.NewNop())
		first := &mockRunnable{topic: events.TopicMappingCreated, shutdownErr: assert.AnError}
		second := &mockRunnable{topic: events.TopicMappingDeleted}
		group.Add(first)
		group.Add(second)

		err := group.Shutdown()

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorIs(t, err, errMock)
		assert.ErrorContains(t, err, events.TopicMappingCreated)
		assert.True(t, second.shutdown)
	})
}

func TestGroup_Topics(t *testing.T) {
	group := events.NewGroup(newMockSubscriber(), zap.NewNop())
	events.NewAuditLog(zap.NewNop()).Register(group, zap.NewNop())

	assert.Equal(t, []string{events.TopicMappingCreated, events.TopicMappingDeleted}, group.Topics())
}

func TestAuditLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	audit := events.NewAuditLog(zap.New(core))
	sub := newMockSubscriber()
	group := events.NewGroup(sub, zap.NewNop())

	audit.Register(group, zap.NewNop())
	require.NoError(t, group.Start(context.Background()))

	created, _ := json.Marshal(&events.MappingCreated{ID: "id-1", Owner: "42", Code: "ABCDEF"})
	createdMsg := message.NewMessage(uuid.NewString(), created)
	sub.channel(events.TopicMappingCreated) <- createdMsg
	waitAck(t, createdMsg)

	deleted, _ := json.Marshal(&events.MappingDeleted{Owner: "42", Code: "ABCDEF"})
	deletedMsg := message.NewMessage(uuid.NewString(), deleted)
	sub.channel(events.TopicMappingDeleted) <- deletedMsg
	waitAck(t, deletedMsg)

	require.NoError(t, group.Shutdown())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "mapping created", entries[0].Message)
	assert.Equal(t, "ABCDEF", entries[0].ContextMap()["code"])
	assert.Equal(t, "mapping deleted", entries[1].Message)
}
