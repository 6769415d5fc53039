package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/broadcast"
	"papertrader/src/database"
	"papertrader/src/engine"
	"papertrader/src/execution"
	"papertrader/src/feed"
	"papertrader/src/marketdata"
	"papertrader/src/repository"
	"papertrader/src/risk"
	"papertrader/src/security"
	"papertrader/src/server"
)

var (
	PORT     = os.Getenv("SERVER_PORT")
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	_ = godotenv.Load()
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := marketdata.NewCache()
	hub := broadcast.NewHub()
	riskMgr := risk.NewManager()
	simulator := execution.NewSimulator(repository.NewTradeStore(), cache)
	eng := engine.NewEngine(
		repository.NewStrategyRepository(),
		repository.NewInstrumentRepository(),
		repository.NewAuditRepository(),
		simulator,
		riskMgr,
		cache,
		security.DigestSecret,
	)

	// Seed the cache so instruments resolve before the first tick.
	instruments, err := repository.NewInstrumentRepository().ListActive(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Failed to list instruments")
	}
	feed.NewSeeder(cache).Seed(ctx, instruments)

	riskMgr.StartDailyReset(ctx)
	go feed.NewStream(cache).Start(ctx)
	go broadcast.NewLoop(cache, hub).Start(ctx)

	port := PORT
	if port == "" {
		port = server.GetConfig().Port
	}
	server.StartServer(port, eng, hub, riskMgr, repository.NewStrategyRepository())
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
