package charges

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateBuyLeg(t *testing.T) {
	// 10 shares at 100.00
	b := Calculate(SideBuy, d("1000"), DefaultRateConfig())

	if !b.STT.Equal(d("1")) {
		t.Fatalf("stt mismatch. got=%s want=1", b.STT)
	}
	if !b.StampDuty.Equal(d("0.15")) {
		t.Fatalf("stamp duty mismatch. got=%s want=0.15", b.StampDuty)
	}
	// exchange 0.03, sebi 0.00, gst 18% of 0.03 = 0.01
	if !b.ExchangeTxn.Equal(d("0.03")) {
		t.Fatalf("exchange txn mismatch. got=%s want=0.03", b.ExchangeTxn)
	}
	if !b.GST.Equal(d("0.01")) {
		t.Fatalf("gst mismatch. got=%s want=0.01", b.GST)
	}
	if !b.Total.Equal(d("1.19")) {
		t.Fatalf("total mismatch. got=%s want=1.19", b.Total)
	}
}

func TestCalculateSellLegHasNoStampDuty(t *testing.T) {
	b := Calculate(SideSell, d("1000"), DefaultRateConfig())

	if !b.StampDuty.IsZero() {
		t.Fatalf("sell leg must not carry stamp duty. got=%s", b.StampDuty)
	}
	if !b.Total.Equal(d("1.04")) {
		t.Fatalf("total mismatch. got=%s want=1.04", b.Total)
	}
}

func TestCalculateZeroGross(t *testing.T) {
	b := Calculate(SideBuy, decimal.Zero, DefaultRateConfig())
	if !b.Total.IsZero() {
		t.Fatalf("expected zero breakdown for zero gross. got=%s", b.Total)
	}
}

func TestCalculateSideCaseInsensitive(t *testing.T) {
	upper := Calculate("BUY", d("5000"), DefaultRateConfig())
	lower := Calculate("buy", d("5000"), DefaultRateConfig())

	if !upper.Total.Equal(lower.Total) {
		t.Fatalf("side comparison must be case-insensitive. got=%s vs %s", upper.Total, lower.Total)
	}
}
