package broadcast

import (
	"sync"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/marketdata"
)

const (
	MessageTypePrice    = "price"
	MessageTypeSnapshot = "snapshot"
)

// Message is one push to a subscriber: either a single symbol's entry or
// an aggregate snapshot of every watched symbol.
type Message struct {
	Type    string             `json:"type"`
	Symbol  string             `json:"symbol,omitempty"`
	Entry   *marketdata.Entry  `json:"entry,omitempty"`
	Entries []marketdata.Entry `json:"entries,omitempty"`
}

// Subscriber is one connected listener with a bounded outbound queue.
type Subscriber struct {
	symbols map[string]struct{}
	send    chan Message
}

// C is the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscriber) C() <-chan Message { return s.send }

func (s *Subscriber) watches(symbol string) bool {
	_, ok := s.symbols[symbol]
	return ok
}

// Hub tracks subscribers and fans messages out to them. Publishing never
// blocks: a full queue drops the message for that subscriber only.
type Hub struct {
	mu        sync.RWMutex
	subs      map[*Subscriber]struct{}
	queueSize int
	log       *logger.Entry
}

func NewHub() *Hub {
	config := GetConfig()

	return &Hub{
		subs:      make(map[*Subscriber]struct{}),
		queueSize: config.QueueSize,
		log:       logger.WithField("component", "broadcast_hub"),
	}
}

// Subscribe registers a listener for the given symbols.
func (h *Hub) Subscribe(symbols []string) *Subscriber {
	sub := &Subscriber{
		symbols: make(map[string]struct{}, len(symbols)),
		send:    make(chan Message, h.queueSize),
	}
	for _, s := range symbols {
		sub.symbols[s] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

// Publish pushes one symbol's update to every subscriber watching it.
func (h *Hub) Publish(symbol string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.watches(symbol) {
			continue
		}
		select {
		case sub.send <- msg:
		default:
			h.log.WithField("symbol", symbol).Debug("dropping update for slow subscriber")
		}
	}
}

// PublishAll pushes an aggregate message to every subscriber.
func (h *Hub) PublishAll(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			h.log.Debug("dropping snapshot for slow subscriber")
		}
	}
}

// WatchedSymbols is the union of every subscriber's watch list.
func (h *Hub) WatchedSymbols() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	for sub := range h.subs {
		for s := range sub.symbols {
			seen[s] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	return out
}
