package execution

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Mode selects "paper" (simulated fills with slippage and latency) or
	// "live". Live execution is a stub and rejects all orders.
	Mode string `envconfig:"EXECUTION_MODE" default:"paper"`

	// SlippagePct is applied against the trader in paper mode: buys fill
	// above the last traded price, sells below it.
	SlippagePct float64 `envconfig:"EXECUTION_SLIPPAGE_PCT" default:"0.05"`

	// ExecutionDelay models order routing latency in paper mode.
	ExecutionDelay time.Duration `envconfig:"EXECUTION_DELAY" default:"500ms"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
