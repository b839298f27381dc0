// Package realtime pushes document changes to connected clients over
// WebSockets. Clients subscribe to topics that mirror document paths
// ("chats/room-1", "presence"); the hub fans each docstore change event out
// to every subscriber of the matching topic.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/docstore"
)

// Update is the payload pushed to subscribed clients when a document under
// one of their topics changes.
type Update struct {
	Type      string            `json:"type"`
	Topic     string            `json:"topic"`
	Path      string            `json:"path"`
	Timestamp time.Time         `json:"timestamp"`
	Doc       docstore.Document `json:"doc,omitempty"`
}

// ClientMessage is an inbound subscription request from a client.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Client is one connected WebSocket session.
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
}

// Hub tracks clients and their topic subscriptions. All operations are
// safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	byTopic map[string]map[*Client]struct{}
	all     map[*Client]struct{}
	log     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		byTopic: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		log:     logger.With().Str("component", "realtime").Logger(),
	}
}

// Register adds a client and subscribes it to its initial topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		if h.byTopic[topic] == nil {
			h.byTopic[topic] = make(map[*Client]struct{})
		}
		h.byTopic[topic][client] = struct{}{}
	}
}

// Unregister removes a client from every topic and closes its send channel.
// Screens call this on unmount so no listener outlives its view.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	for _, topic := range client.Topics {
		h.removeLocked(topic, client)
	}
	delete(h.all, client)
	close(client.Send)
}

// Subscribe adds topics to an already-registered client.
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		if h.byTopic[topic] == nil {
			h.byTopic[topic] = make(map[*Client]struct{})
		}
		h.byTopic[topic][client] = struct{}{}
	}
	client.Topics = append(client.Topics, topics...)
}

// Unsubscribe removes topics from an already-registered client.
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removeSet := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		removeSet[t] = struct{}{}
		h.removeLocked(t, client)
	}

	remaining := client.Topics[:0]
	for _, t := range client.Topics {
		if _, rm := removeSet[t]; !rm {
			remaining = append(remaining, t)
		}
	}
	client.Topics = remaining
}

func (h *Hub) removeLocked(topic string, client *Client) {
	if subscribers, ok := h.byTopic[topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.byTopic, topic)
		}
	}
}

// ProcessMessage dispatches an inbound client message.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
}

// Broadcast pushes an update to every client subscribed to its topic. A
// client whose send buffer is full is skipped; delivery is best-effort.
func (h *Hub) Broadcast(update Update) {
	data, err := json.Marshal(update)
	if err != nil {
		h.log.Error().Err(err).Str("topic", update.Topic).Msg("marshal update")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.byTopic[update.Topic] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byTopic[topic])
}

// BridgeCollection wires a docstore collection to the hub: every change
// under the collection is broadcast on a topic equal to the changed
// document's path, and on the collection name itself for list screens.
// The returned unsubscribe tears the bridge down.
func (h *Hub) BridgeCollection(store docstore.Client, collection string) docstore.UnsubscribeFunc {
	return store.Listen(collection, func(ev docstore.Event) {
		update := Update{
			Type:      string(ev.Type),
			Path:      ev.Path,
			Timestamp: time.Now().UTC(),
			Doc:       ev.Doc,
		}
		update.Topic = ev.Path
		h.Broadcast(update)
		update.Topic = collection
		h.Broadcast(update)
	})
}
