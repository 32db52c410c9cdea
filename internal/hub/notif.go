package hub

import (
	"log"
	"sync"

	"github.com/xiaot623/livechat/internal/domain"
)

// subscriberBuffer is the per-subscriber event backlog. A subscriber
// whose writer cannot drain this many events is considered dead.
const subscriberBuffer = 16

// Subscriber is one live push-delivery channel. A user with several
// open streams holds one subscriber per stream.
type Subscriber struct {
	events chan domain.PushEvent
}

// Events returns the channel the subscriber's writer drains. The hub
// closes it when the subscriber is removed.
func (s *Subscriber) Events() <-chan domain.PushEvent {
	return s.events
}

// NotifHub tracks push subscribers in two independent registries, one
// keyed by customer id and one by official id.
type NotifHub struct {
	mu        sync.Mutex
	customers map[string]map[*Subscriber]bool
	officials map[string]map[*Subscriber]bool
}

// NewNotifHub creates a new NotifHub.
func NewNotifHub() *NotifHub {
	return &NotifHub{
		customers: make(map[string]map[*Subscriber]bool),
		officials: make(map[string]map[*Subscriber]bool),
	}
}

// RegisterCustomer adds a new subscriber for a customer.
func (h *NotifHub) RegisterCustomer(customerID string) *Subscriber {
	return h.add(h.customers, customerID)
}

// RegisterOfficial adds a new subscriber for an official.
func (h *NotifHub) RegisterOfficial(officialID string) *Subscriber {
	return h.add(h.officials, officialID)
}

// UnregisterCustomer removes a customer subscriber. Safe to call when
// the subscriber is already gone.
func (h *NotifHub) UnregisterCustomer(customerID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(h.customers, customerID, sub)
}

// UnregisterOfficial removes an official subscriber. Safe to call when
// the subscriber is already gone.
func (h *NotifHub) UnregisterOfficial(officialID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(h.officials, officialID, sub)
}

// SendToCustomer delivers an event to every subscriber of a customer.
// Delivery is best-effort: no subscribers means the event is dropped.
func (h *NotifHub) SendToCustomer(customerID string, event domain.PushEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOut(h.customers, customerID, event)
}

// SendToOfficial delivers an event to every subscriber of an official.
func (h *NotifHub) SendToOfficial(officialID string, event domain.PushEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOut(h.officials, officialID, event)
}

// SendToAllOfficials delivers an event to every official subscriber.
func (h *NotifHub) SendToAllOfficials(event domain.PushEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for officialID := range h.officials {
		h.fanOut(h.officials, officialID, event)
	}
}

// GetCustomerCount returns the number of customers with live subscribers.
func (h *NotifHub) GetCustomerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.customers)
}

// GetOfficialCount returns the number of officials with live subscribers.
func (h *NotifHub) GetOfficialCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.officials)
}

func (h *NotifHub) add(registry map[string]map[*Subscriber]bool, key string) *Subscriber {
	sub := &Subscriber{events: make(chan domain.PushEvent, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if registry[key] == nil {
		registry[key] = make(map[*Subscriber]bool)
	}
	registry[key][sub] = true
	return sub
}

// remove deletes sub from the registry, dropping the key entirely when
// its set empties, and closes the subscriber's channel. Removing an
// absent subscriber is a no-op, so the channel is closed exactly once.
func (h *NotifHub) remove(registry map[string]map[*Subscriber]bool, key string, sub *Subscriber) {
	subs, ok := registry[key]
	if !ok || !subs[sub] {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(registry, key)
	}
	close(sub.events)
}

// fanOut delivers the event to every subscriber under key. A subscriber
// whose buffer is full is dead (its writer stopped draining): it is
// removed without affecting delivery to the remaining subscribers.
func (h *NotifHub) fanOut(registry map[string]map[*Subscriber]bool, key string, event domain.PushEvent) {
	for sub := range registry[key] {
		select {
		case sub.events <- event:
		default:
			log.Printf("Push subscriber for %s not draining, removing", key)
			h.remove(registry, key, sub)
		}
	}
}
