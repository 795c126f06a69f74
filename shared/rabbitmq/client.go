// shared/rabbitmq/client.go
package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is what services need from the broker: declare a queue, push JSON to it.
type Publisher interface {
	CreateQueue(queueName string) error
	Publish(ctx context.Context, queueName string, body []byte) error
	Close() error
}

// Consumer is what workers need: a stream of deliveries they must ack or nack.
type Consumer interface {
	CreateQueue(queueName string) error
	Consume(queueName string) (<-chan amqp.Delivery, error)
	Close() error
}

type RabbitmqClient struct {
	//conn is a tcp connection to rabbitmq server
	conn *amqp.Connection
	chn  *amqp.Channel
}

var (
	_ Publisher = (*RabbitmqClient)(nil)
	_ Consumer  = (*RabbitmqClient)(nil)
)

func NewClient(url string) (*RabbitmqClient, error) {
	//this opens the tcp connection to rabbitmq server
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	//Open a channel. This opens a logical session inside the connection.
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitmqClient{
		conn: conn,
		chn:  chn,
	}, nil
}

// Close cleans up
func (r *RabbitmqClient) Close() error {
	if err := r.chn.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// CreateQueue prepares a durable queue to hold messages
func (r *RabbitmqClient) CreateQueue(queueName string) error {
	_, err := r.chn.QueueDeclare(
		queueName, //name of queue
		true,      //durable
		false,     //delete when unused
		false,     //exclusive
		false,     //no-wait
		nil,       //arguments
	)
	return err
}

// Publish sends a message to a specific queue
func (r *RabbitmqClient) Publish(ctx context.Context, queueName string, body []byte) error {
	return r.chn.PublishWithContext(
		ctx,
		"",        //exchange
		queueName, //routing key (queue name)
		false,     //mandatory
		false,     //immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // make message persistent
			Body:         body,            //actual data payload
		},
	)
}

// Consume starts listening for messages on a queue. Deliveries are not
// auto-acked; the caller acks each one once it is handled.
func (r *RabbitmqClient) Consume(queueName string) (<-chan amqp.Delivery, error) {
	// One unacked job per worker at a time.
	if err := r.chn.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}
	msgs, err := r.chn.Consume(
		queueName, //queue
		"",        //consumer
		false,     //auto-ack
		false,     //exclusive
		false,     //no-local
		false,     //no-wait
		nil,       //args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", queueName, err)
	}
	return msgs, nil
}
