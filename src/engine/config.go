package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DedupWindow is how long an executed signal's idempotency key stays
	// live. A retransmission after the window is treated as a new signal.
	DedupWindow time.Duration `envconfig:"SIGNAL_DEDUP_WINDOW" default:"60s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
