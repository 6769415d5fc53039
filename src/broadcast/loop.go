package broadcast

import (
	"context"
	"sort"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrader/src/marketdata"
)

// Loop periodically reads the price cache for every watched symbol and
// fans updates out through the hub: one message per symbol plus one
// aggregate snapshot per sweep.
type Loop struct {
	cache    *marketdata.Cache
	hub      *Hub
	interval time.Duration
	log      *logger.Entry
}

func NewLoop(cache *marketdata.Cache, hub *Hub) *Loop {
	config := GetConfig()

	return &Loop{
		cache:    cache,
		hub:      hub,
		interval: config.Interval,
		log:      logger.WithField("component", "broadcast_loop"),
	}
}

// Start runs the loop until ctx is canceled.
func (l *Loop) Start(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.WithField("interval", l.interval).Info("broadcast loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info("broadcast loop stopped")
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Loop) sweep() {
	symbols := l.hub.WatchedSymbols()
	if len(symbols) == 0 {
		return
	}
	sort.Strings(symbols)

	entries := make([]marketdata.Entry, 0, len(symbols))
	for _, symbol := range symbols {
		entry, ok := l.cache.Get(symbol)
		if !ok {
			continue
		}
		entries = append(entries, entry)

		e := entry
		l.hub.Publish(symbol, Message{
			Type:   MessageTypePrice,
			Symbol: symbol,
			Entry:  &e,
		})
	}

	if len(entries) > 0 {
		l.hub.PublishAll(Message{Type: MessageTypeSnapshot, Entries: entries})
	}
}
