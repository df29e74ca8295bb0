package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the part of *amqp091.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher sends every event to a durable topic exchange with the event
// type as routing key.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	log      *applog.Logger
}

func NewAMQPPublisher(url, exchange string, log *applog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	publisher, err := newAMQPPublisher(channel, exchange, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher.conn = conn

	return publisher, nil
}

func newAMQPPublisher(channel amqpChannel, exchange string, log *applog.Logger) (*AMQPPublisher, error) {
	err := channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		log:      log.WithComponent(applog.ComponentAMQP),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.log.DebugContext(ctx, "Published event",
		applog.FieldEventType, event.Type,
		"exchange", p.exchange)

	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
