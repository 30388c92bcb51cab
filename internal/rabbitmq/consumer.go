package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

// ErrDeliveriesClosed брокер закрыл канал доставки (обрыв соединения или отмена потребителя).
var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// Handler обрабатывает тело сообщения. nil подтверждает сообщение,
// ошибка возвращает его в очередь.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage читает очередь queueName и обрабатывает сообщения не более чем
// в workers горутинах с ручным подтверждением.
// Блокируется до отмены ctx или закрытия канала доставки и дожидается обработчиков.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, workers int, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"

	if workers < 1 {
		workers = defaultConsumerPrefetch
	}

	consumerTag := "equigest-" + queueName
	delivery, err := ch.Consume(
		queueName,
		consumerTag,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(sl.Op(op), slog.String("queue", queueName))

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, workers)
	for {
		select {
		case <-ctx.Done():
			if err := ch.Cancel(consumerTag, false); err != nil {
				log.Warn("failed to cancel consumer", sl.Err(err))
			}
			return nil
		case d, ok := <-delivery:
			if !ok {
				return fmt.Errorf("%s: %w", op, ErrDeliveriesClosed)
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				if err := handler(ctx, d.Body); err != nil {
					log.Warn("handler failed, message requeued", sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		}
	}
}
