package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vibeloghq/vibelog/internal/config"
	"github.com/vibeloghq/vibelog/internal/db"
	"github.com/vibeloghq/vibelog/internal/export"
	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/store/rabbitmq"
)

const maxAttempts = 3

type worker struct {
	repo *export.Repo
	gen  *export.Generator
	ch   *amqp.Channel

	retryQueue string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDriver, cfg.DBDSN)

	concurrency := 2
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			concurrency = n
		}
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbitmq dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbitmq channel: %v", err)
	}
	defer ch.Close()

	mainQ := cfg.RabbitQueue
	if err := rabbitmq.DeclareTopology(ch, mainQ); err != nil {
		log.Fatalf("declare queues: %v", err)
	}

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	deliveries, err := ch.Consume(mainQ, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	repo := journal.NewRepo(gdb)
	w := &worker{
		repo:       export.NewRepo(gdb),
		gen:        export.NewGenerator(repo, cfg.Location()),
		ch:         ch,
		retryQueue: rabbitmq.RetryQueue(mainQ),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				w.handle(ctx, d)
			}
		}()
	}

	log.Printf("worker up queue=%s concurrency=%d", mainQ, concurrency)

dispatch:
	for {
		select {
		case <-ctx.Done():
			break dispatch
		case d, ok := <-deliveries:
			if !ok {
				break dispatch
			}
			jobs <- d
		}
	}

	close(jobs)
	wg.Wait()
	log.Println("worker stopped")
}

func attempts(d amqp.Delivery) int64 {
	if v, ok := d.Headers["x-attempts"]; ok {
		if n, ok := v.(int64); ok {
			return n
		}
		if n, ok := v.(int32); ok {
			return int64(n)
		}
	}
	return 0
}

func (w *worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg rabbitmq.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("bad message, dropping to dlq: %v", err)
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err := w.process(ctx, msg.JobID)
	if err == nil {
		log.Printf("job done job=%s user=%d format=%s took=%s", msg.JobID, msg.UserID, msg.Format, time.Since(start))
		_ = d.Ack(false)
		return
	}

	n := attempts(d) + 1
	log.Printf("job failed job=%s attempt=%d err=%v", msg.JobID, n, err)
	if n >= maxAttempts {
		if mErr := w.repo.MarkJobFailed(ctx, msg.JobID, err.Error()); mErr != nil {
			log.Printf("mark failed job=%s err=%v", msg.JobID, mErr)
		}
		_ = d.Nack(false, false) // to dlq
		return
	}

	// Republish on the retry queue with the attempt count; the queue TTL
	// dead-letters it back to the main queue.
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         d.Body,
		Headers:      amqp.Table{"x-attempts": n},
		Expiration:   "5000",
	}
	if pErr := w.ch.PublishWithContext(ctx, "", w.retryQueue, false, false, pub); pErr != nil {
		log.Printf("retry publish job=%s err=%v", msg.JobID, pErr)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *worker) process(ctx context.Context, jobID string) error {
	if err := w.repo.MarkJobRunning(ctx, jobID); err != nil {
		return err
	}
	job, err := w.repo.JobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == export.JobSucceeded {
		return nil
	}

	result, err := w.gen.Generate(ctx, job.UserID, job.Format)
	if err != nil {
		return err
	}
	return w.repo.MarkJobSucceeded(ctx, jobID, result)
}
