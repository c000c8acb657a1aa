package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TheYates/bernat-medical-sub000/internal/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

type fakeSender struct {
	mu    sync.Mutex
	err   error
	sent  []EmailPayload
	calls int
}

func (f *fakeSender) Send(to []string, subject, body, attachmentPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, EmailPayload{To: to, Subject: subject, Body: body, AttachmentPath: attachmentPath})
	return nil
}

func popJob(t *testing.T, rdb *redis.Client, queue string) string {
	t.Helper()
	res, err := rdb.RPop(context.Background(), queue).Result()
	require.NoError(t, err)
	return res
}

func TestDispatcher_EnqueueEmail(t *testing.T) {
	rdb := newTestRedis(t)
	d := NewDispatcher(rdb)

	require.NoError(t, d.EnqueueEmail(context.Background(), EmailPayload{To: []string{"admin@clinic.test"}, Subject: "hi"}))

	var job Job
	require.NoError(t, json.Unmarshal([]byte(popJob(t, rdb, QueueEmail)), &job))
	assert.Equal(t, JobTypeEmail, job.Type)
	assert.Equal(t, 0, job.Attempts)

	var p EmailPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, []string{"admin@clinic.test"}, p.To)
}

func TestPool_ProcessSendsEmail(t *testing.T) {
	rdb := newTestRedis(t)
	sender := &fakeSender{}
	pool := NewPool(rdb, map[string]JobHandler{
		JobTypeEmail: NewEmailWorker(sender, infra.NewCircuitBreaker(infra.BreakerConfig{})),
	})
	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(context.Background(), EmailPayload{To: []string{"a@b.c"}, Subject: "Low stock"}))

	pool.process(context.Background(), QueueEmail, popJob(t, rdb, QueueEmail))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Low stock", sender.sent[0].Subject)
}

func TestPool_RetriesThenDeadLetters(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	sender := &fakeSender{err: errors.New("relay refused")}
	pool := NewPool(rdb, map[string]JobHandler{
		JobTypeEmail: NewEmailWorker(sender, infra.NewCircuitBreaker(infra.BreakerConfig{FailureThreshold: 10})),
	})
	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailPayload{To: []string{"a@b.c"}}))

	for i := 0; i < MaxJobAttempts; i++ {
		pool.process(ctx, QueueEmail, popJob(t, rdb, QueueEmail))
	}

	n, err := rdb.LLen(ctx, QueueEmail).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	dl, err := DLQLength(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dl)

	entries, err := PeekDLQ(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, MaxJobAttempts, entries[0].Attempts)
	assert.Contains(t, entries[0].Reason, "relay refused")
	assert.Equal(t, MaxJobAttempts, sender.calls)
}

func TestPool_DequeueReturnsQueuedJob(t *testing.T) {
	rdb := newTestRedis(t)
	pool := NewPool(rdb, nil)
	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(context.Background(), EmailPayload{To: []string{"a@b.c"}}))

	queue, raw, ok := pool.dequeue(context.Background(), 0)
	require.True(t, ok)
	assert.Equal(t, QueueEmail, queue)
	assert.Contains(t, raw, `"type":"email"`)
}

// A dead Redis must not turn the worker loop into a busy spin.
func TestPool_DequeueBacksOffWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	mr.Close()

	pool := NewPool(rdb, nil)
	pool.backoff = 150 * time.Millisecond

	start := time.Now()
	_, _, ok := pool.dequeue(context.Background(), 0)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	pool.backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start = time.Now()
	_, _, ok = pool.dequeue(ctx, 0)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation cuts the backoff short")
}

func TestPool_UnknownJobTypeIsDeadLettered(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	pool := NewPool(rdb, map[string]JobHandler{})

	raw, _ := json.Marshal(Job{Type: "fax", Payload: json.RawMessage(`{}`)})
	pool.process(ctx, QueueEmail, string(raw))

	dl, err := DLQLength(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dl)
}

func TestEmailWorker_OpenBreakerSkipsSend(t *testing.T) {
	sender := &fakeSender{err: errors.New("down")}
	cb := infra.NewCircuitBreaker(infra.BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	w := NewEmailWorker(sender, cb)
	payload, _ := json.Marshal(EmailPayload{To: []string{"a@b.c"}})

	assert.Error(t, w.Process(context.Background(), payload))
	assert.ErrorIs(t, w.Process(context.Background(), payload), infra.ErrCircuitOpen)
	assert.Equal(t, 1, sender.calls)
}

func TestEmailWorker_DropsEmptyRecipients(t *testing.T) {
	sender := &fakeSender{}
	w := NewEmailWorker(sender, infra.NewCircuitBreaker(infra.BreakerConfig{}))

	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"to":[]}`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`not json`)))
	assert.Zero(t, sender.calls)
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) Sweep(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 1, nil
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestStockAlertCron_SweepsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}

	StartStockAlertCron(ctx, sweeper, 20*time.Millisecond)

	assert.Eventually(t, func() bool { return sweeper.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}
