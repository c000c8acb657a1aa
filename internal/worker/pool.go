package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobTypeEmail = "email"

	// MaxJobAttempts is how many times a job runs before it is dead-lettered.
	MaxJobAttempts = 3

	popTimeout     = 5 * time.Second
	dequeueBackoff = 2 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// JobHandler runs one job type. A returned error schedules a retry.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	return enqueue(ctx, d.rdb, QueueEmail, JobTypeEmail, payload)
}

func enqueue(ctx context.Context, rdb *redis.Client, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]JobHandler
	queues   []string
	backoff  time.Duration // pause after a failed BRPOP
}

// NewPool maps job types to handlers. Only QueueEmail is consumed today.
func NewPool(rdb *redis.Client, handlers map[string]JobHandler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers, queues: []string{QueueEmail}, backoff: dequeueBackoff}
}

// Start launches numWorkers goroutines.
// Each goroutine blocks on BRPOP, so idle workers use no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			if queue, raw, ok := p.dequeue(ctx, id); ok {
				p.process(ctx, queue, raw)
			}
		}
	}
}

// dequeue blocks on BRPOP for up to popTimeout. An empty queue or a cancelled
// ctx returns quietly; any other error is logged and followed by p.backoff.
func (p *Pool) dequeue(ctx context.Context, id int) (queue, raw string, ok bool) {
	result, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
	switch {
	case err == nil && len(result) == 2:
		return result[0], result[1], true
	case err == nil, errors.Is(err, redis.Nil), ctx.Err() != nil:
		return "", "", false
	}
	log.Error().Err(err).Int("worker", id).Dur("backoff", p.backoff).Msg("worker: dequeue failed")
	select {
	case <-ctx.Done():
	case <-time.After(p.backoff):
	}
	return "", "", false
}

// process runs one raw job. Failures are re-queued until MaxJobAttempts,
// then moved to the dead letter queue.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		sendToDLQ(ctx, p.rdb, queue, Job{Type: "unknown", Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, err.Error())
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		sendToDLQ(ctx, p.rdb, queue, job, "no handler for job type "+job.Type)
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= MaxJobAttempts {
		sendToDLQ(ctx, p.rdb, queue, job, err.Error())
		return
	}

	log.Warn().Err(err).
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Msg("job failed, re-queued")
	if perr := push(ctx, p.rdb, queue, job); perr != nil {
		log.Error().Err(perr).Str("queue", queue).Msg("failed to re-queue job")
	}
}
