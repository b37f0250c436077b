// Package dispatch hands verification codes from the request path to a pool
// of background SMS workers.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ErlanBelekov/mobile-signup/internal/metrics"
	"github.com/ErlanBelekov/mobile-signup/internal/requestid"
	"github.com/ErlanBelekov/mobile-signup/internal/sms"
)

type Job struct {
	MobileNumber string
	Code         string
	// RequestID ties the send back to the HTTP request in the logs.
	RequestID string
}

type Queue struct {
	jobs        chan Job
	sender      sms.Sender
	logger      *slog.Logger
	workers     int
	sendTimeout time.Duration
}

func NewQueue(sender sms.Sender, logger *slog.Logger, workers, size int, sendTimeout time.Duration) *Queue {
	return &Queue{
		jobs:        make(chan Job, size),
		sender:      sender,
		logger:      logger.With("component", "sms_dispatch"),
		workers:     workers,
		sendTimeout: sendTimeout,
	}
}

// Enqueue never blocks. It returns false and drops the job when the buffer is full.
func (q *Queue) Enqueue(job Job) bool {
	select {
	case q.jobs <- job:
		metrics.SMSQueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		metrics.SMSDispatchTotal.WithLabelValues("dropped").Inc()
		q.logger.Warn("sms queue full, dropping job", "mobile_number", job.MobileNumber, "request_id", job.RequestID)
		return false
	}
}

// Start runs the workers until ctx is cancelled. Jobs already buffered at that
// point are still sent before Start returns.
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info("sms dispatch started", "workers", q.workers, "queue_size", cap(q.jobs))

	var g errgroup.Group
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			q.work(ctx)
			return nil
		})
	}
	_ = g.Wait()

	q.logger.Info("sms dispatch shut down")
}

func (q *Queue) work(ctx context.Context) {
	for {
		select {
		case job := <-q.jobs:
			q.send(job)
		case <-ctx.Done():
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.send(job)
		default:
			return
		}
	}
}

// send uses a fresh context so a shutdown does not abort in-flight sends.
// The request id rides along so sender logs can be correlated.
func (q *Queue) send(job Job) {
	metrics.SMSQueueDepth.Set(float64(len(q.jobs)))

	ctx, cancel := context.WithTimeout(requestid.WithRequestID(context.Background(), job.RequestID), q.sendTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() { done <- q.sender.Send(ctx, job.MobileNumber, job.Code) }()

	select {
	case ok := <-done:
		if ok {
			metrics.SMSDispatchTotal.WithLabelValues("sent").Inc()
			return
		}
		metrics.SMSDispatchTotal.WithLabelValues("failed").Inc()
		q.logger.Warn("sms dispatch failed", "mobile_number", job.MobileNumber, "request_id", job.RequestID)
	case <-ctx.Done():
		metrics.SMSDispatchTotal.WithLabelValues("timeout").Inc()
		q.logger.Warn("sms dispatch timed out", "mobile_number", job.MobileNumber,
			"request_id", job.RequestID, "timeout", q.sendTimeout)
	}
}
