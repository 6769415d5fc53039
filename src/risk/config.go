package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Timezone of the exchange whose session window and midnight boundary
	// drive admission checks and the daily counter reset.
	Timezone string `envconfig:"RISK_TIMEZONE" default:"Asia/Kolkata"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
