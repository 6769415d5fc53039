package feed

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/marketdata"
	"papertrader/src/model"
)

type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Close  decimal.Decimal `json:"close"`
}

// Seeder primes the price cache for every active instrument before the
// stream has produced a tick: a fresh close from the quote service when
// reachable, otherwise the instrument's last persisted close.
type Seeder struct {
	cache  *marketdata.Cache
	client *resty.Client
	log    *logger.Entry
}

func NewSeeder(cache *marketdata.Cache) *Seeder {
	config := GetConfig()

	return &Seeder{
		cache:  cache,
		client: resty.New().SetBaseURL(config.QuoteBaseURL),
		log:    logger.WithField("component", "feed_seeder"),
	}
}

// Seed tracks every instrument in the cache. Quote-service failures are
// logged and fall back; seeding never blocks startup on the feed side.
func (s *Seeder) Seed(ctx context.Context, instruments []model.Instrument) {
	for _, inst := range instruments {
		ref := inst.LastClose

		if quote, err := s.fetchQuote(ctx, inst.Symbol); err != nil {
			s.log.WithError(err).WithField("symbol", inst.Symbol).
				Debug("quote fetch failed, using persisted close")
		} else if quote.Close.IsPositive() {
			ref = quote.Close
		}

		s.cache.EnsureTracked(inst.Symbol, ref)
	}

	s.log.WithField("instruments", len(instruments)).Info("price cache seeded")
}

func (s *Seeder) fetchQuote(ctx context.Context, symbol string) (*quoteResponse, error) {
	var quote quoteResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&quote).
		Get("/quotes/" + symbol)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote service returned %s for %s", resp.Status(), symbol)
	}
	return &quote, nil
}
