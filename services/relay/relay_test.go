package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroker struct {
	mu             sync.Mutex
	feeds          map[string]chan []byte
	subscribeCalls int
	cleanupCalls   int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{feeds: make(map[string]chan []byte)}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	feed := b.feeds[channel]
	b.mu.Unlock()

	if feed != nil {
		feed <- payload
	}
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	b.subscribeCalls++
	feed := make(chan []byte, 16)
	b.feeds[channel] = feed
	b.mu.Unlock()

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case payload, ok := <-feed:
				if !ok {
					return
				}
				select {
				case out <- payload:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() {
		b.mu.Lock()
		b.cleanupCalls++
		b.mu.Unlock()
	}
	return out, cleanup, nil
}

func (b *fakeBroker) stats() (subscribes, cleanups int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeCalls, b.cleanupCalls
}

type fakeConn struct {
	mu       sync.Mutex
	messages []Message
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, v.(Message))
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestAllowMessageRateLimit(t *testing.T) {
	r := New(newFakeBroker())

	clock := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	require.True(t, r.AllowMessage(1), "first message always passes")
	assert.False(t, r.AllowMessage(1), "second message in the same instant is dropped")

	clock = clock.Add(500 * time.Millisecond)
	assert.False(t, r.AllowMessage(1), "still inside the interval")

	// A different user is limited independently
	assert.True(t, r.AllowMessage(2))

	clock = clock.Add(600 * time.Millisecond)
	assert.True(t, r.AllowMessage(1), "interval elapsed")
}

func TestJoinSharesOneSubscriptionPerClass(t *testing.T) {
	broker := newFakeBroker()
	r := New(broker)

	conn1 := &fakeConn{}
	conn2 := &fakeConn{}

	require.NoError(t, r.Join(5, conn1, 1, false))
	require.NoError(t, r.Join(5, conn2, 2, false))

	subs, _ := broker.stats()
	assert.Equal(t, 1, subs, "one broker subscription per class")

	r.Leave(5, conn1)
	subs, cleanups := broker.stats()
	assert.Equal(t, 1, subs)
	assert.Equal(t, 0, cleanups, "listener stays while a socket remains")

	r.Leave(5, conn2)
	assert.Eventually(t, func() bool {
		_, cleanups := broker.stats()
		return cleanups == 1
	}, time.Second, 10*time.Millisecond, "last leave tears down the subscription")

	// A fresh join reopens the subscription
	require.NoError(t, r.Join(5, conn1, 1, false))
	subs, _ = broker.stats()
	assert.Equal(t, 2, subs)
	r.Leave(5, conn1)
}

func TestPublishFanOutVisibility(t *testing.T) {
	broker := newFakeBroker()
	r := New(broker)

	adminConn := &fakeConn{}
	studentConn := &fakeConn{}

	require.NoError(t, r.Join(9, adminConn, 1, true))
	require.NoError(t, r.Join(9, studentConn, 2, false))
	defer r.Leave(9, adminConn)
	defer r.Leave(9, studentConn)

	// A student message reaches admins only
	err := r.Publish(context.Background(), 9, Message{ID: 1, UserID: 2, Message: "question"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return adminConn.count() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, studentConn.count())

	// An admin message reaches everyone
	err = r.Publish(context.Background(), 9, Message{ID: 2, UserID: 1, Message: "answer", IsAdmin: true})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return adminConn.count() == 2 && studentConn.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublishToClassWithoutListeners(t *testing.T) {
	r := New(newFakeBroker())

	// No sockets registered for the class; publish must not block or fail
	err := r.Publish(context.Background(), 77, Message{ID: 1, UserID: 1, Message: "hello"})
	assert.NoError(t, err)
}
