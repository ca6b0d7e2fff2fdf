package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:          12,
		OrderNumber: "ORD-ABCDEF12",
		CustomerID:  3,
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("26.50"),
	}
}

func TestMultiPublishesToAllAndJoinsErrors(t *testing.T) {
	event := NewOrderEvent(OrderCreated, sampleOrder(), "")
	first, second := &mockPublisher{}, &mockPublisher{}
	first.On("Publish", mock.Anything, event).Return(errors.New("broker down"))
	second.On("Publish", mock.Anything, event).Return(nil)

	err := Multi{first, second}.Publish(context.Background(), event)

	assert.ErrorContains(t, err, "broker down")
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestNewOrderEvent(t *testing.T) {
	order := sampleOrder()
	order.Status = models.OrderStatusConfirmed
	event := NewOrderEvent(OrderStatusChanged, order, models.OrderStatusPending)

	assert.Equal(t, OrderStatusChanged, event.Type)
	assert.Equal(t, "ORD-ABCDEF12", event.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, event.PreviousStatus)
	assert.Equal(t, models.OrderStatusConfirmed, event.Status)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestAMQPPublisherUsesEventTypeAsRoutingKey(t *testing.T) {
	ch := &mockChannel{}
	ch.On("Publish", "pizzastore.orders", "order.created", false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			strings.Contains(string(msg.Body), "ORD-ABCDEF12")
	})).Return(nil)
	ch.On("Close").Return(nil)

	publisher := &AMQPPublisher{channel: ch, exchange: "pizzastore.orders"}
	require.NoError(t, publisher.Publish(context.Background(), NewOrderEvent(OrderCreated, sampleOrder(), "")))
	require.NoError(t, publisher.Close())

	err := publisher.Publish(context.Background(), NewOrderEvent(OrderCreated, sampleOrder(), ""))
	assert.Error(t, err)
	ch.AssertExpectations(t)
}

func TestAMQPPublisherRedialsClosedChannel(t *testing.T) {
	event := NewOrderEvent(OrderCreated, sampleOrder(), "")
	closed := &mockChannel{}
	closed.On("Publish", "pizzastore.orders", "order.created", false, false, mock.Anything).Return(amqp.ErrClosed)
	fresh := &mockChannel{}
	fresh.On("Publish", "pizzastore.orders", "order.created", false, false, mock.Anything).Return(nil)

	dials := 0
	publisher := &AMQPPublisher{
		channel:  closed,
		exchange: "pizzastore.orders",
		redial: func() (*amqp.Connection, channel, error) {
			dials++
			return nil, fresh, nil
		},
	}

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Publish(context.Background(), event))
	assert.Equal(t, 1, dials)
	closed.AssertNumberOfCalls(t, "Publish", 1)
	fresh.AssertNumberOfCalls(t, "Publish", 2)
}

func TestAMQPPublisherReportsFailedRedial(t *testing.T) {
	closed := &mockChannel{}
	closed.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).Return(amqp.ErrClosed)
	publisher := &AMQPPublisher{
		channel:  closed,
		exchange: "pizzastore.orders",
		redial: func() (*amqp.Connection, channel, error) {
			return nil, nil, errors.New("connection refused")
		},
	}

	err := publisher.Publish(context.Background(), NewOrderEvent(OrderCreated, sampleOrder(), ""))
	assert.ErrorContains(t, err, "connection refused")
}

func TestAMQPPublisherHonoursCancelledContext(t *testing.T) {
	publisher := &AMQPPublisher{channel: &mockChannel{}, exchange: "x"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Publish(ctx, NewOrderEvent(OrderCreated, sampleOrder(), "")), context.Canceled)
}

func TestHubBroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, "kitchen@example.com")
	}))
	defer server.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), NewOrderEvent(OrderCreated, sampleOrder(), "")))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, OrderCreated, msg.Event)
	assert.Equal(t, "ORD-ABCDEF12", msg.Data.OrderNumber)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubDropsStalledClientWithoutBlocking(t *testing.T) {
	hub := NewHub()
	// no writer drains this queue, like a display that stopped reading
	stalled := &client{subscriber: "stalled@example.com", send: make(chan []byte, 1)}
	hub.clients[nil] = stalled

	event := NewOrderEvent(OrderCreated, sampleOrder(), "")
	require.NoError(t, hub.Publish(context.Background(), event))
	assert.Equal(t, 1, hub.ClientCount())

	done := make(chan struct{})
	go func() {
		_ = hub.Publish(context.Background(), event)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish waited on a stalled client")
	}

	assert.Equal(t, 0, hub.ClientCount())
	_, open := <-stalled.send
	assert.True(t, open, "queued frame is still readable")
	_, open = <-stalled.send
	assert.False(t, open, "queue is closed once the client is dropped")
}
