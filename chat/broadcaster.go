package chat

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is how many undelivered messages a subscriber may lag
// behind before further messages are dropped for it.
const subscriberBuffer = 32

// Broadcaster fans new chat messages out to SSE subscribers. Subscribers are
// registered per connection and removed when the connection goes away;
// delivery is best-effort, a slow consumer loses messages rather than
// blocking the sender.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan MessageView
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan MessageView),
	}
}

// Subscribe registers a new subscriber and returns its id together with the
// channel new messages arrive on. The caller must Unsubscribe with the same
// id when done.
func (b *Broadcaster) Subscribe() (string, <-chan MessageView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan MessageView, subscriberBuffer)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers msg to every current subscriber. Subscribers whose buffer
// is full are skipped.
func (b *Broadcaster) Publish(msg MessageView) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			log.Printf("chat: dropping message for slow subscriber %s", id)
		}
	}
}

// SubscriberCount reports how many subscribers are currently registered.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
