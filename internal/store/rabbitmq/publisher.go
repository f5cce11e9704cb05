// Package rabbitmq carries export jobs from the API to cmd/worker over
// a durable queue. A failed job is republished on the retry queue,
// whose TTL dead-letters it back to the main queue; after the final
// attempt it lands on the dead-letter queue for inspection.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is the wire payload for one queued export. The export_jobs
// row stays authoritative; user and format ride along so the worker can
// log them without a lookup.
type Message struct {
	JobID  string `json:"job_id"`
	UserID uint64 `json:"user_id"`
	Format string `json:"format"`
}

// RetryQueue and DeadLetterQueue name the companion queues for a main
// queue. Publisher and worker derive them the same way.
func RetryQueue(queue string) string { return queue + ".retry" }

func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// DeclareTopology declares the main/retry/dead-letter queue triple.
// Both ends declare it, so startup order does not matter.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	declares := []struct {
		name string
		args amqp.Table
	}{
		// dlq first: the others dead-letter into it
		{DeadLetterQueue(queue), nil},
		{RetryQueue(queue), amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		}},
		{queue, amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": DeadLetterQueue(queue),
		}},
	}
	for _, d := range declares {
		if _, err := ch.QueueDeclare(d.name, true, false, false, false, d.args); err != nil {
			return fmt.Errorf("declare %s: %w", d.name, err)
		}
	}
	return nil
}

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishJob enqueues one export, persistent so a broker restart does
// not drop it.
func (p *Publisher) PublishJob(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
