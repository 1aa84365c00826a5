package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQueue(t *testing.T, maxReceive int) (*redisQueue, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	q := newRedisQueue(client, "test_jobs", maxReceive)
	q.now = clock.now
	q.pollInterval = time.Millisecond
	return q, clock
}

func TestRedisQueueFIFOAndDelete(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t, 0)

	_, err := q.Send(ctx, []byte("first"))
	require.NoError(t, err)
	_, err = q.Send(ctx, []byte("second"))
	require.NoError(t, err)

	msgs, err := q.Receive(ctx, 1, 0, time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "first", string(msgs[0].Body))
	assert.Equal(t, 1, msgs[0].ReceiveCount)

	require.NoError(t, q.Delete(ctx, msgs[0]))

	msgs, err = q.Receive(ctx, 10, 0, time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "second", string(msgs[0].Body))
}

func TestRedisQueueVisibilityTimeoutRedelivers(t *testing.T) {
	ctx := context.Background()
	q, clock := newTestQueue(t, 0)

	id, err := q.Send(ctx, []byte(`{"job_id":"j1"}`))
	require.NoError(t, err)

	msgs, err := q.Receive(ctx, 1, 0, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	// Invisible while in flight.
	msgs, err = q.Receive(ctx, 1, 0, 15*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	clock.advance(15*time.Minute + time.Second)
	msgs, err = q.Receive(ctx, 1, 0, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, 2, msgs[0].ReceiveCount)
}

func TestRedisQueueDeadLetter(t *testing.T) {
	ctx := context.Background()
	q, clock := newTestQueue(t, 2)

	_, err := q.Send(ctx, []byte("poison"))
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		msgs, err := q.Receive(ctx, 1, 0, time.Minute)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, i, msgs[0].ReceiveCount)
		clock.advance(2 * time.Minute)
	}

	msgs, err := q.Receive(ctx, 1, 0, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	dead, err := q.DeadLetterCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dead)
}

func TestRedisQueueReceiveHonoursCancellation(t *testing.T) {
	q, _ := newTestQueue(t, 0)
	q.now = time.Now
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msgs, err := q.Receive(ctx, 1, time.Hour, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisQueuePing(t *testing.T) {
	q, _ := newTestQueue(t, 0)
	require.NoError(t, q.Ping(context.Background()))
}
