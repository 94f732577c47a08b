package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// AMQPPublisher forwards events to a RabbitMQ topic exchange, routed by event type.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

// DialAMQP connects to the broker, retrying a few times, and declares the exchange.
func DialAMQP(url, exchange string, log zerolog.Logger) (*AMQPPublisher, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for attempt := 0; attempt < 5; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log.With().Str("component", "amqp_publisher").Logger(),
	}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// amqp.Channel is not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		string(evt.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    evt.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", evt.Type, err)
	}
	return nil
}

// Close tears down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.log.Warn().Err(err).Msg("Close channel")
	}
	return p.conn.Close()
}
