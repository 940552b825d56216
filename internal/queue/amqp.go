package queue

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

const maxDeliveryRetries = 3

// AMQPQueue is the RabbitMQ-backed implementation used in production. Each
// topic maps to a durable queue; retries are tracked with an x-retry-count
// header on republish.
type AMQPQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPQueue dials the broker and opens a channel.
func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return &AMQPQueue{conn: conn, channel: ch}, nil
}

// Close shuts down the channel and connection.
func (q *AMQPQueue) Close() {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.channel.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

// Publish marshals the payload as JSON and sends it to the topic's queue.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	if _, err := q.declare(topic); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return q.channel.Publish(
		"",    // exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Subscribe consumes the topic's queue and runs handler for every delivery.
// Failed deliveries are republished with an incremented x-retry-count header
// until maxDeliveryRetries, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(body []byte) error) error {
	if _, err := q.declare(topic); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}

	msgs, err := q.channel.Consume(
		topic,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer for %s: %w", topic, err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				retryCount := getRetryCount(d)
				log.Printf("⚠️ Failed to process message on %s (attempt %d/%d): %v", topic, retryCount+1, maxDeliveryRetries, err)

				if retryCount+1 >= maxDeliveryRetries {
					log.Printf("⚠️ Dropping message on %s after %d attempts: %s", topic, maxDeliveryRetries, d.Body)
					d.Ack(false)
					continue
				}

				if pubErr := q.republish(topic, d, retryCount+1); pubErr != nil {
					log.Printf("⚠️ Failed to requeue message on %s: %v", topic, pubErr)
					d.Nack(false, true)
					continue
				}
				d.Ack(false)
				continue
			}
			d.Ack(false)
		}
	}()

	log.Printf("📩 Waiting for messages on %s", topic)
	return nil
}

func (q *AMQPQueue) republish(topic string, d amqp.Delivery, retryCount int) error {
	return q.channel.Publish(
		"",
		topic,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         d.Body,
			Headers:      amqp.Table{"x-retry-count": int32(retryCount)},
		},
	)
}

func getRetryCount(d amqp.Delivery) int {
	if d.Headers == nil {
		return 0
	}
	switch v := d.Headers["x-retry-count"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

var _ Queue = (*AMQPQueue)(nil)
