package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/amankumarsingh77/frame-search/internal/queue"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const defaultPollInterval = 500 * time.Millisecond

// receiveScript requeues messages whose visibility deadline passed, then pops
// up to ARGV[3] ids, marks them in flight until ARGV[2] and bumps their
// receive counters. Ids received more than ARGV[4] times move to the dead
// list instead. Returns a flat list of id, receive count pairs.
var receiveScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, id in ipairs(expired) do
	redis.call('ZREM', KEYS[2], id)
	redis.call('RPUSH', KEYS[1], id)
end
local out = {}
local max = tonumber(ARGV[3])
local maxReceive = tonumber(ARGV[4])
local taken = 0
while taken < max do
	local id = redis.call('RPOP', KEYS[1])
	if not id then
		break
	end
	if redis.call('HEXISTS', KEYS[5], id) == 1 then
		local count = redis.call('HINCRBY', KEYS[3], id, 1)
		if maxReceive > 0 and count > maxReceive then
			redis.call('HDEL', KEYS[3], id)
			redis.call('LPUSH', KEYS[4], id)
		else
			redis.call('ZADD', KEYS[2], ARGV[2], id)
			table.insert(out, id)
			table.insert(out, count)
			taken = taken + 1
		end
	end
end
return out
`)

type redisQueue struct {
	client          *redis.Client
	name            string
	maxReceiveCount int
	pollInterval    time.Duration
	now             func() time.Time
}

// NewRedisQueue returns a Queue stored under keys prefixed with name:
// a pending list, a message hash, an in-flight sorted set scored by
// visibility deadline, a receive counter hash and a dead-letter list.
func NewRedisQueue(client *redis.Client, name string, maxReceiveCount int) queue.Queue {
	return newRedisQueue(client, name, maxReceiveCount)
}

func newRedisQueue(client *redis.Client, name string, maxReceiveCount int) *redisQueue {
	return &redisQueue{
		client:          client,
		name:            name,
		maxReceiveCount: maxReceiveCount,
		pollInterval:    defaultPollInterval,
		now:             time.Now,
	}
}

func (q *redisQueue) pendingKey() string  { return q.name + ":pending" }
func (q *redisQueue) messagesKey() string { return q.name + ":messages" }
func (q *redisQueue) inflightKey() string { return q.name + ":inflight" }
func (q *redisQueue) receivesKey() string { return q.name + ":receives" }
func (q *redisQueue) deadKey() string     { return q.name + ":dead" }

func (q *redisQueue) Send(ctx context.Context, body []byte) (string, error) {
	id := uuid.New().String()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.messagesKey(), id, body)
		pipe.LPush(ctx, q.pendingKey(), id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to enqueue message: %w", err)
	}
	return id, nil
}

// Receive polls until at least one message is available, wait elapses or
// ctx is done. A cancelled ctx returns no messages and no error.
func (q *redisQueue) Receive(ctx context.Context, maxMessages int, wait, visibility time.Duration) ([]*models.QueueMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	deadline := q.now().Add(wait)
	for {
		msgs, err := q.receiveOnce(ctx, maxMessages, visibility)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil
			}
			return nil, err
		}
		if len(msgs) > 0 {
			return msgs, nil
		}
		remaining := deadline.Sub(q.now())
		if remaining <= 0 {
			return msgs, nil
		}
		timer := time.NewTimer(min(remaining, q.pollInterval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil
		case <-timer.C:
		}
	}
}

func (q *redisQueue) receiveOnce(ctx context.Context, maxMessages int, visibility time.Duration) ([]*models.QueueMessage, error) {
	now := q.now()
	res, err := receiveScript.Run(ctx, q.client,
		[]string{q.pendingKey(), q.inflightKey(), q.receivesKey(), q.deadKey(), q.messagesKey()},
		now.UnixMilli(),
		now.Add(visibility).UnixMilli(),
		maxMessages,
		q.maxReceiveCount,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}
	pairs, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("failed to receive messages: unexpected reply %T", res)
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pairs)/2)
	counts := make([]int, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		id, _ := pairs[i].(string)
		count, _ := pairs[i+1].(int64)
		ids = append(ids, id)
		counts = append(counts, int(count))
	}

	bodies, err := q.client.HMGet(ctx, q.messagesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load message bodies: %w", err)
	}
	msgs := make([]*models.QueueMessage, 0, len(ids))
	for i, id := range ids {
		body, ok := bodies[i].(string)
		if !ok {
			// Deleted between pop and load.
			q.client.ZRem(ctx, q.inflightKey(), id)
			continue
		}
		msgs = append(msgs, &models.QueueMessage{
			ID:            id,
			ReceiptHandle: id + ":" + strconv.Itoa(counts[i]),
			Body:          []byte(body),
			ReceiveCount:  counts[i],
		})
	}
	return msgs, nil
}

func (q *redisQueue) Delete(ctx context.Context, msg *models.QueueMessage) error {
	id := msg.ID
	if id == "" {
		id, _, _ = strings.Cut(msg.ReceiptHandle, ":")
	}
	if id == "" {
		return errors.New("failed to delete message: empty id")
	}
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.inflightKey(), id)
		pipe.HDel(ctx, q.messagesKey(), id)
		pipe.HDel(ctx, q.receivesKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

func (q *redisQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping queue: %w", err)
	}
	return nil
}

// DeadLetterCount returns how many messages were moved to the dead list.
func (q *redisQueue) DeadLetterCount(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.deadKey()).Result()
}
