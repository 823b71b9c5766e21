package notification

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Rabbit wraps one AMQP connection/channel pair bound to the ticket-email
// queue.
type Rabbit struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

func NewRabbit(url, exchange, queue string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		zap.L().Error("failed to connect to RabbitMQ", zap.Error(err))
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		zap.L().Error("failed to open RabbitMQ channel", zap.Error(err))
		return nil, err
	}

	client := &Rabbit{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		zap.L().Error("failed to declare exchange", zap.Error(err))
		return nil, err
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		zap.L().Error("failed to declare queue", zap.Error(err))
		return nil, err
	}

	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		zap.L().Error("failed to bind queue", zap.Error(err))
		return nil, err
	}

	zap.L().Info("RabbitMQ initialized",
		zap.String("exchange", exchange),
		zap.String("queue", queue))

	return client, nil
}

func (r *Rabbit) Close() {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
	zap.L().Info("RabbitMQ connection closed")
}

func (r *Rabbit) Publish(message []byte) error {
	err := r.channel.Publish(
		r.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		zap.L().Error("failed to publish message to RabbitMQ", zap.Error(err))
	}

	return err
}

func (r *Rabbit) Consume(handler func([]byte) error) error {
	msgs, err := r.channel.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Error("failed to start consuming messages", zap.Error(err))
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				zap.L().Warn("failed to process message", zap.Error(err))
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	zap.L().Info("started consuming", zap.String("queue", r.queue))

	return nil
}
