package marketdata

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// Tick is one partial update from the streaming feed. Nil fields were not
// present in the upstream message and must not clobber cached values.
type Tick struct {
	Symbol string           `json:"symbol"`
	LTP    *decimal.Decimal `json:"ltp,omitempty"`
	Open   *decimal.Decimal `json:"open,omitempty"`
	High   *decimal.Decimal `json:"high,omitempty"`
	Low    *decimal.Decimal `json:"low,omitempty"`
	Close  *decimal.Decimal `json:"close,omitempty"`
	Volume *int64           `json:"volume,omitempty"`
}

// Entry is the full snapshot held per symbol. Entries are replaced as a
// whole on every update, so a reader never sees old and new fields mixed.
type Entry struct {
	Symbol    string          `json:"symbol"`
	LTP       decimal.Decimal `json:"ltp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// Subscriber receives every accepted update for one symbol, synchronously
// from the updating goroutine.
type Subscriber func(Entry)

type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	subs    map[string][]Subscriber
	now     func() time.Time
	log     *logger.Entry
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		subs:    make(map[string][]Subscriber),
		now:     time.Now,
		log:     logger.WithField("component", "price_cache"),
	}
}

// Update merges tick into the cached entry for tick.Symbol. Fields absent
// from the tick keep their previous value. A zero or missing last traded
// price is replaced by the tick's close, then by the prior LTP; the cache
// never regresses to a zero price because a feed reported no trade.
func (c *Cache) Update(tick Tick) Entry {
	if tick.Symbol == "" {
		return Entry{}
	}

	c.mu.Lock()
	entry := c.entries[tick.Symbol]
	entry.Symbol = tick.Symbol

	if tick.Open != nil {
		entry.Open = *tick.Open
	}
	if tick.High != nil {
		entry.High = *tick.High
	}
	if tick.Low != nil {
		entry.Low = *tick.Low
	}
	if tick.Close != nil {
		entry.Close = *tick.Close
	}
	if tick.Volume != nil {
		entry.Volume = *tick.Volume
	}

	switch {
	case tick.LTP != nil && tick.LTP.IsPositive():
		entry.LTP = *tick.LTP
	case entry.LTP.IsPositive():
		// keep prior LTP
	case entry.Close.IsPositive():
		entry.LTP = entry.Close
	}

	entry.Timestamp = c.now()
	c.entries[tick.Symbol] = entry
	subs := append([]Subscriber(nil), c.subs[tick.Symbol]...)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(entry)
	}

	return entry
}

// Get returns the current snapshot. ok is false when the symbol has never
// been tracked; callers must treat that as "cannot execute", not as a
// price of zero.
func (c *Cache) Get(symbol string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[symbol]
	return entry, ok
}

// EnsureTracked seeds an entry from a fallback reference price so that
// instruments that have not streamed yet still resolve to a usable, if
// stale, number. A live entry is never overwritten.
func (c *Cache) EnsureTracked(symbol string, refPrice decimal.Decimal) {
	if symbol == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[symbol]; ok {
		return
	}

	c.entries[symbol] = Entry{
		Symbol:    symbol,
		LTP:       refPrice,
		Close:     refPrice,
		Timestamp: c.now(),
	}
	c.log.WithField("symbol", symbol).Debug("seeded price cache from reference price")
}

// Subscribe registers fn for every subsequent update of symbol.
func (c *Cache) Subscribe(symbol string, fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[symbol] = append(c.subs[symbol], fn)
}

// Symbols lists every tracked symbol.
func (c *Cache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.entries))
	for s := range c.entries {
		out = append(out, s)
	}
	return out
}
