package ws

import (
	"encoding/json"
	"sync"
	"time"

	"ai_todo/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var feedConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "refresh_feed_connections",
	Help: "Open websocket subscriptions to the task refresh feed",
})

func init() {
	prometheus.MustRegister(feedConnections)
}

// Hub fans out "your tasks changed" events to the owner's open sockets.
// It carries no task data; clients re-fetch the list.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Client]struct{}
	now  func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Client]struct{}),
		now:  time.Now,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[c.Owner]
	if !ok {
		set = make(map[*Client]struct{})
		h.subs[c.Owner] = set
	}
	set[c] = struct{}{}
	feedConnections.Inc()
	logger.Debug("feed subscribe", "owner", c.Owner, "subscribers", len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and closes its send queue exactly once.
func (h *Hub) removeLocked(c *Client) {
	set, ok := h.subs[c.Owner]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	feedConnections.Dec()
	if len(set) == 0 {
		delete(h.subs, c.Owner)
	}
}

// Subscribers returns how many sockets listen for owner.
func (h *Hub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[owner])
}

// NotifyTasksChanged tells every subscriber of owner to refresh. Clients
// whose queue is full are dropped rather than blocking the caller.
func (h *Hub) NotifyTasksChanged(owner, reason, taskID string) {
	msg, err := json.Marshal(Event{
		Type:   MsgTasksChanged,
		Owner:  owner,
		Reason: reason,
		TaskID: taskID,
		At:     h.now().UTC(),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subs[owner] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("feed client too slow, dropping", "owner", owner)
			h.removeLocked(c)
		}
	}
}

// Close drops every subscriber (server shutdown).
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
