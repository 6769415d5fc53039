package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/marketdata"
	"papertrader/src/monitoring"
)

// Stream consumes the upstream tick feed and writes every tick into the
// price cache. The feed pushes; this service never pulls prices.
type Stream struct {
	cache *marketdata.Cache

	url          string
	reconnectMin time.Duration
	reconnectMax time.Duration
	log          *logger.Entry
}

func NewStream(cache *marketdata.Cache) *Stream {
	config := GetConfig()

	return &Stream{
		cache:        cache,
		url:          config.StreamURL,
		reconnectMin: config.ReconnectMin,
		reconnectMax: config.ReconnectMax,
		log:          logger.WithField("component", "price_feed"),
	}
}

// Start runs the connect/read loop until ctx is canceled, reconnecting
// with capped exponential backoff.
func (s *Stream) Start(ctx context.Context) {
	backoff := s.reconnectMin

	for {
		if ctx.Err() != nil {
			return
		}

		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		s.log.WithError(err).WithField("backoff", backoff).Warn("feed disconnected, reconnecting")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		backoff *= 2
		if backoff > s.reconnectMax {
			backoff = s.reconnectMax
		}
	}
}

func (s *Stream) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.WithField("url", s.url).Info("feed connected")

	// Unblock ReadJSON when ctx is canceled.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var tick marketdata.Tick
		if err := conn.ReadJSON(&tick); err != nil {
			return err
		}

		entry := s.cache.Update(tick)
		if entry.LTP.IsPositive() {
			price, _ := entry.LTP.Float64()
			monitoring.RecordCachedPrice(entry.Symbol, price)
		}
	}
}
