// Package rabbitmq содержит подключение к брокеру, объявление топологии,
// публикацию JSON-сообщений и пул обработчиков очереди.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру, повторяя попытку retries раз с паузой delay.
func Connect(ctx context.Context, connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := range retries {
		var conn *amqp.Connection
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал, выставляет prefetch и объявляет топологию.
func SetupChannel(conn *amqp.Connection, topology Topology, prefetch int) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declare(ch, topology, prefetch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func declare(ch *amqp.Channel, topology Topology, prefetch int) error {
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if err := ch.ExchangeDeclare(
		topology.Exchange,
		amqp.ExchangeDirect,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", topology.Exchange, err)
	}

	for _, q := range topology.Queues {
		if _, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.QueueName, err)
		}

		if err := ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			topology.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind queue %s with routing key %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
