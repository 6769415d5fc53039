package feed

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// StreamURL is the upstream websocket pushing price ticks.
	StreamURL string `envconfig:"FEED_STREAM_URL" default:"ws://localhost:8083/stream"`

	// QuoteBaseURL serves last-close reference quotes over REST.
	QuoteBaseURL string `envconfig:"FEED_QUOTE_BASE_URL" default:"http://localhost:8083"`

	ReconnectMin time.Duration `envconfig:"FEED_RECONNECT_MIN" default:"1s"`
	ReconnectMax time.Duration `envconfig:"FEED_RECONNECT_MAX" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
