package orchestrator

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Message kinds delivered to plan subscribers.
const (
	MessageAlert        = "alert"
	MessagePlanUpdated  = "plan_updated"
	MessageStatusChange = "status_change"
)

// Message is one broadcast payload.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const subscriberBuffer = 16

// Hub fans messages out to every subscriber of a plan. Subscribers that have
// fallen behind or disconnected are skipped, never blocked on: a slow reader
// must not stall the watchdog.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[string]chan Message
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]chan Message)}
}

// Subscribe registers a new subscriber for a plan and returns its id and
// receive channel.
func (h *Hub) Subscribe(planID string) (string, <-chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Message, subscriberBuffer)
	if h.subs[planID] == nil {
		h.subs[planID] = make(map[string]chan Message)
	}
	h.subs[planID][id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are
// ignored; a subscriber may race its own disconnect.
func (h *Hub) Unsubscribe(planID, subID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	plan := h.subs[planID]
	ch, ok := plan[subID]
	if !ok {
		return
	}
	delete(plan, subID)
	if len(plan) == 0 {
		delete(h.subs, planID)
	}
	close(ch)
}

// Broadcast delivers a message to every live subscriber of the plan. Delivery
// is non-blocking; a full channel means that subscriber misses this message.
func (h *Hub) Broadcast(planID string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs[planID] {
		select {
		case ch <- msg:
		default:
			fmt.Fprintf(os.Stderr, "broadcast: subscriber %s of plan %s is not keeping up, skipping\n", id, planID)
		}
	}
}

// SubscriberCount reports how many subscribers a plan currently has.
func (h *Hub) SubscriberCount(planID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[planID])
}

// Shutdown closes every subscriber channel.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for planID, plan := range h.subs {
		for _, ch := range plan {
			close(ch)
		}
		delete(h.subs, planID)
	}
}
