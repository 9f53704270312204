package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// MinMessageInterval is the minimum gap between a user's accepted chat
// messages. Faster messages are dropped silently.
const MinMessageInterval = time.Second

// Broker is the publish/subscribe transport used for cross-process fan-out.
// One channel exists per live class.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Conn is the socket surface the relay needs from a chat connection
type Conn interface {
	WriteJSON(v interface{}) error
}

// Message is the wire format fanned out to chat sockets
type Message struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"`
}

type subscriber struct {
	conn    Conn
	userID  uint
	isAdmin bool
}

// Relay owns the chat connection registry, the per-user rate-limit map and
// the per-class broker listeners. All three live behind one mutex so the
// registry is safe under Fiber's goroutine-per-connection model.
type Relay struct {
	broker Broker
	now    func() time.Time

	mu        sync.Mutex
	conns     map[uint][]*subscriber        // live class id -> connected sockets
	lastSent  map[uint]time.Time            // user id -> last accepted message
	listeners map[uint]context.CancelFunc   // live class id -> listener cancel
}

// New creates a relay backed by the given broker
func New(broker Broker) *Relay {
	return &Relay{
		broker:    broker,
		now:       time.Now,
		conns:     make(map[uint][]*subscriber),
		lastSent:  make(map[uint]time.Time),
		listeners: make(map[uint]context.CancelFunc),
	}
}

// ChatChannel returns the broker channel name for a live class
func ChatChannel(liveClassID uint) string {
	return fmt.Sprintf("live_class_chat:%d", liveClassID)
}

// Join registers a socket for a live class. The first socket for a class
// opens the class's broker subscription and starts its listener.
func (r *Relay) Join(liveClassID uint, conn Conn, userID uint, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[liveClassID]; !ok {
		ctx, cancel := context.WithCancel(context.Background())
		ch, cleanup, err := r.broker.Subscribe(ctx, ChatChannel(liveClassID))
		if err != nil {
			cancel()
			return err
		}
		r.listeners[liveClassID] = cancel
		go r.listen(liveClassID, ch, cleanup)
	}

	r.conns[liveClassID] = append(r.conns[liveClassID], &subscriber{
		conn:    conn,
		userID:  userID,
		isAdmin: isAdmin,
	})
	return nil
}

// Leave removes a socket from a live class. When the last socket leaves,
// the class's listener is cancelled and its subscription dropped.
func (r *Relay) Leave(liveClassID uint, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.conns[liveClassID]
	kept := subs[:0]
	for _, s := range subs {
		if s.conn != conn {
			kept = append(kept, s)
		}
	}

	if len(kept) == 0 {
		delete(r.conns, liveClassID)
		if cancel, ok := r.listeners[liveClassID]; ok {
			cancel()
			delete(r.listeners, liveClassID)
		}
		return
	}
	r.conns[liveClassID] = kept
}

// AllowMessage applies the per-user rate limit. It records the accepted
// timestamp, so call it only once per inbound message.
func (r *Relay) AllowMessage(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last, ok := r.lastSent[userID]; ok && now.Sub(last) < MinMessageInterval {
		return false
	}
	r.lastSent[userID] = now
	return true
}

// Publish sends a message to the class's broker channel. Every relay
// instance, including this one, receives it back through its listener.
func (r *Relay) Publish(ctx context.Context, liveClassID uint, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.broker.Publish(ctx, ChatChannel(liveClassID), payload)
}

// listen forwards broker messages to the locally-held sockets for one class.
// It exits when the subscription channel closes (cancellation or broker
// loss); no reconnect protocol exists.
func (r *Relay) listen(liveClassID uint, ch <-chan []byte, cleanup func()) {
	defer cleanup()

	for payload := range ch {
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("relay: dropping malformed payload on class %d: %v", liveClassID, err)
			continue
		}
		r.deliver(liveClassID, msg)
	}
}

func (r *Relay) deliver(liveClassID uint, msg Message) {
	r.mu.Lock()
	subs := make([]*subscriber, len(r.conns[liveClassID]))
	copy(subs, r.conns[liveClassID])
	r.mu.Unlock()

	for _, s := range subs {
		if !visibleTo(msg, s) {
			continue
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			log.Printf("relay: write to user %d on class %d failed: %v", s.userID, liveClassID, err)
		}
	}
}

// visibleTo implements the chat visibility rule: messages from admins reach
// everyone, messages from students reach admins only.
// TODO: confirm with product whether students should see each other's
// messages; current behavior matches the shipped mobile clients.
func visibleTo(msg Message, s *subscriber) bool {
	return msg.IsAdmin || s.isAdmin
}
