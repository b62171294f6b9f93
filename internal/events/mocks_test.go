package events_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

type mockSubscriber struct {
	mu           sync.Mutex
	channels     map[string]chan *message.Message
	subscribeErr error
	closeErr     error
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{channels: make(map[string]chan *message.Message)}
}

func (m *mockSubscriber) channel(topic string) chan *message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[topic]
	if !ok {
		ch = make(chan *message.Message, 10)
		m.channels[topic] = ch
	}

	return ch
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.channel(topic), nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		for _, ch := range m.channels {
			close(ch)
		}
	}

	return m.closeErr
}

type mockPublisher struct {
	mu         sync.Mutex
	published  map[string][]*message.Message
	publishErr error
	closeErr   error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]*message.Message)}
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.published[topic] = append(m.published[topic], msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

var errMock = errors.New("mock error")
