package realtime

import "time"

// Event types published by the HTTP handlers.
const (
	CartItemAdded   = "cart.item_added"
	CartItemUpdated = "cart.item_updated"
	CartItemRemoved = "cart.item_removed"
	CartCleared     = "cart.cleared"
	CartDeleted     = "cart.deleted"
	CartCheckedOut  = "cart.checked_out"
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
)

type Event struct {
	Type     string    `json:"type"`
	Resource string    `json:"resource"`
	ID       string    `json:"id"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

func NewEvent(eventType, resource, id string, payload any) Event {
	return Event{Type: eventType, Resource: resource, ID: id, Payload: payload, At: time.Now().UTC()}
}

// Publisher delivers events to connected clients. Publish must not block.
type Publisher interface {
	Publish(Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}

// Fanout publishes to every publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(e Event) {
	for _, p := range f {
		p.Publish(e)
	}
}
