package broadcast

import (
	"testing"

	"github.com/shopspring/decimal"

	"papertrader/src/marketdata"
)

func TestPublishReachesOnlyWatchers(t *testing.T) {
	hub := NewHub()
	reliance := hub.Subscribe([]string{"RELIANCE"})
	tcs := hub.Subscribe([]string{"TCS"})

	hub.Publish("RELIANCE", Message{Type: MessageTypePrice, Symbol: "RELIANCE"})

	select {
	case msg := <-reliance.C():
		if msg.Symbol != "RELIANCE" {
			t.Fatalf("wrong symbol delivered: %s", msg.Symbol)
		}
	default:
		t.Fatal("watcher must receive the update")
	}

	select {
	case msg := <-tcs.C():
		t.Fatalf("non-watcher must not receive anything, got %+v", msg)
	default:
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	hub.queueSize = 2
	slow := hub.Subscribe([]string{"RELIANCE"})
	fast := hub.Subscribe([]string{"RELIANCE"})

	// Fill both queues, then drain only the fast one.
	for i := 0; i < 2; i++ {
		hub.Publish("RELIANCE", Message{Type: MessageTypePrice, Symbol: "RELIANCE"})
	}
	for i := 0; i < 2; i++ {
		<-fast.C()
	}

	// The slow subscriber's queue is full: this publish must not block and
	// must still reach the fast subscriber.
	hub.Publish("RELIANCE", Message{Type: MessageTypePrice, Symbol: "RELIANCE"})

	select {
	case <-fast.C():
	default:
		t.Fatal("fast subscriber must keep receiving while a sibling is full")
	}

	if got := len(slow.send); got != 2 {
		t.Fatalf("slow subscriber queue must stay at capacity, len=%d", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe([]string{"RELIANCE"})

	hub.Unsubscribe(sub)

	if _, open := <-sub.C(); open {
		t.Fatal("channel must be closed after unsubscribe")
	}

	// A second unsubscribe of the same listener must be a no-op, not a
	// double close.
	hub.Unsubscribe(sub)

	hub.Publish("RELIANCE", Message{Type: MessageTypePrice, Symbol: "RELIANCE"})
}

func TestWatchedSymbolsIsTheUnion(t *testing.T) {
	hub := NewHub()
	hub.Subscribe([]string{"RELIANCE", "TCS"})
	hub.Subscribe([]string{"TCS", "INFY"})

	got := hub.WatchedSymbols()
	want := map[string]bool{"RELIANCE": true, "TCS": true, "INFY": true}
	if len(got) != len(want) {
		t.Fatalf("union mismatch: %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Fatalf("unexpected symbol %s", s)
		}
	}
}

func TestSweepPublishesPerSymbolAndSnapshot(t *testing.T) {
	cache := marketdata.NewCache()
	ltp := decimal.RequireFromString("2500")
	cache.Update(marketdata.Tick{Symbol: "RELIANCE", LTP: &ltp})

	hub := NewHub()
	sub := hub.Subscribe([]string{"RELIANCE", "UNSEEDED"})

	loop := NewLoop(cache, hub)
	loop.sweep()

	first := <-sub.C()
	if first.Type != MessageTypePrice || first.Symbol != "RELIANCE" {
		t.Fatalf("want per-symbol price message. got=%+v", first)
	}
	if first.Entry == nil || !first.Entry.LTP.Equal(ltp) {
		t.Fatalf("entry mismatch: %+v", first.Entry)
	}

	second := <-sub.C()
	if second.Type != MessageTypeSnapshot {
		t.Fatalf("want snapshot message. got=%+v", second)
	}
	// UNSEEDED has no cache entry and must be skipped, not zero-filled.
	if len(second.Entries) != 1 {
		t.Fatalf("snapshot must only carry cached symbols. got=%d", len(second.Entries))
	}
}

func TestSweepWithNoWatchersPublishesNothing(t *testing.T) {
	loop := NewLoop(marketdata.NewCache(), NewHub())
	loop.sweep()
}
