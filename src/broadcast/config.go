package broadcast

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Interval between broadcast sweeps over the watched symbols.
	Interval time.Duration `envconfig:"BROADCAST_INTERVAL" default:"3s"`

	// QueueSize bounds each subscriber's outbound queue. A subscriber
	// that falls this far behind starts losing updates, not the server.
	QueueSize int `envconfig:"BROADCAST_QUEUE_SIZE" default:"16"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
