package queue

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/OFFIS-RIT/genealogy/backend/internal/util"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ImportQueue = "import_queue"

	retryTTL   = 10 * time.Second
	maxRetries = 10
)

// Publisher is the part of *amqp091.Channel used to send messages.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// ConnURL builds the broker URL from RABBITMQ_USER, RABBITMQ_PASSWORD,
// RABBITMQ_HOST and RABBITMQ_PORT.
func ConnURL() string {
	u := url.URL{
		Scheme: "amqp",
		User: url.UserPassword(
			util.GetEnvString("RABBITMQ_USER", "guest"),
			util.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		),
		Host: fmt.Sprintf("%s:%s",
			util.GetEnvString("RABBITMQ_HOST", "localhost"),
			util.GetEnvString("RABBITMQ_PORT", "5672"),
		),
		Path: "/",
	}
	return u.String()
}

func Init() (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(ConnURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// SetupQueues declares every queue together with its _dlq and its _retry
// queue. Messages in a retry queue expire after retryTTL and are
// dead-lettered back into the main queue.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			amqp091.Table{
				"x-message-ttl":             int32(retryTTL.Milliseconds()),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare %s: %w", retryName, err)
		}
	}
	return nil
}

// PublishFIFO sends a persistent message to a queue on the default exchange.
func PublishFIFO(ctx context.Context, pub Publisher, queueName string, data []byte) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}
	return pub.PublishWithContext(ctx, "", queueName, false, false, publishing)
}
