package inmem

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/amankumarsingh77/frame-search/internal/models"
	"github.com/google/uuid"
)

type queueEntry struct {
	id        string
	body      []byte
	visibleAt time.Time
	receives  int
}

// Queue is a FIFO queue with visibility timeouts. It never blocks on Receive.
type Queue struct {
	mu      sync.Mutex
	entries []*queueEntry
	now     func() time.Time

	// ReceiveErrs are returned by successive Receive calls before any
	// message is delivered.
	ReceiveErrs []error
	SendErr     error
	DeleteErr   error
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

func (q *Queue) Send(_ context.Context, body []byte) (string, error) {
	if q.SendErr != nil {
		return "", q.SendErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	e := &queueEntry{id: uuid.NewString(), body: append([]byte(nil), body...)}
	q.entries = append(q.entries, e)
	return e.id, nil
}

func (q *Queue) Receive(ctx context.Context, maxMessages int, _ time.Duration, visibility time.Duration) ([]*models.QueueMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ReceiveErrs) > 0 {
		err := q.ReceiveErrs[0]
		q.ReceiveErrs = q.ReceiveErrs[1:]
		return nil, err
	}
	now := q.now()
	out := make([]*models.QueueMessage, 0, maxMessages)
	for _, e := range q.entries {
		if len(out) >= maxMessages {
			break
		}
		if e.visibleAt.After(now) {
			continue
		}
		e.receives++
		e.visibleAt = now.Add(visibility)
		out = append(out, &models.QueueMessage{
			ID:            e.id,
			ReceiptHandle: e.id + ":" + strconv.Itoa(e.receives),
			Body:          append([]byte(nil), e.body...),
			ReceiveCount:  e.receives,
		})
	}
	return out, nil
}

func (q *Queue) Delete(_ context.Context, msg *models.QueueMessage) error {
	if q.DeleteErr != nil {
		return q.DeleteErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.id == msg.ID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *Queue) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of messages not yet deleted, visible or not.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// ExpireVisibility makes every in-flight message visible again.
func (q *Queue) ExpireVisibility() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.visibleAt = time.Time{}
	}
}
