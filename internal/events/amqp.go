package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// AMQPConfig holds RabbitMQ connection details
type AMQPConfig struct {
	URL      string
	Exchange string
}

// channel is the subset of *amqp.Channel the publisher uses
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes order events to a durable topic exchange.
// The routing key is the event type. A channel closed by the broker is
// redialed once on the next publish.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	redial   func() (*amqp.Connection, channel, error)
	mu       sync.Mutex
}

// NewAMQPPublisher connects to RabbitMQ and declares the exchange
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	dial := func() (*amqp.Connection, channel, error) {
		return connect(cfg)
	}
	conn, ch, err := dial()
	if err != nil {
		return nil, err
	}
	log.WithField("exchange", cfg.Exchange).Info("RabbitMQ publisher connected")
	return &AMQPPublisher{conn: conn, channel: ch, exchange: cfg.Exchange, redial: dial}, nil
}

func connect(cfg AMQPConfig) (*amqp.Connection, channel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}
	return conn, ch, nil
}

// reconnect replaces a dead connection; callers hold p.mu
func (p *AMQPPublisher) reconnect() error {
	if p.redial == nil {
		return errors.New("RabbitMQ channel is not available")
	}
	if p.conn != nil {
		p.conn.Close()
	}
	conn, ch, err := p.redial()
	if err != nil {
		p.conn, p.channel = nil, nil
		return err
	}
	p.conn, p.channel = conn, ch
	log.WithField("exchange", p.exchange).Info("RabbitMQ publisher reconnected")
	return nil
}

// Publish marshals the event to JSON and sends it as a persistent message
func (p *AMQPPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         string(event.Type),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		if err := p.reconnect(); err != nil {
			return err
		}
	}

	err = p.channel.Publish(p.exchange, string(event.Type), false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		log.WithError(err).WithField("exchange", p.exchange).Warn("RabbitMQ channel closed, redialing")
		if rerr := p.reconnect(); rerr != nil {
			return fmt.Errorf("failed to publish %s: %w", event.Type, rerr)
		}
		err = p.channel.Publish(p.exchange, string(event.Type), false, false, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	log.WithFields(log.Fields{
		"event":        event.Type,
		"order_number": event.OrderNumber,
	}).Debug("Order event published")
	return nil
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redial = nil

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		p.conn = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing RabbitMQ publisher: %v", errs)
	}
	return nil
}
