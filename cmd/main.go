package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"papertrader/src/database"
	"papertrader/src/model"
	"papertrader/src/repository"
	"papertrader/src/security"
)

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "papertrader CMD"
	app.Usage = "The papertrader command line interface"

	app.Commands = []cli.Command{
		seedCMD,
		rotateSecretCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	seedCMD = cli.Command{
		Name:        "seed",
		Usage:       "seed a demo user, instruments and one strategy",
		Action:      seedAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Create demo data for local development`,
	}
	rotateSecretCMD = cli.Command{
		Name:        "rotate-secret",
		Usage:       "rotate the webhook secret of a strategy",
		Action:      rotateSecretAction,
		ArgsUsage:   "<strategy-id>",
		Flags:       []cli.Flag{},
		Description: `Generate and store a fresh webhook secret`,
	}
)

func seedAction(_ *cli.Context) error {
	logrus.Info("Starting seed CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	ctx := context.Background()
	db := database.MainDB.WithContext(ctx)

	users := repository.NewUserRepository()
	existing, err := users.GetByUserName(ctx, "demo")
	if err != nil {
		return err
	}

	user := model.User{
		UserName: "demo",
		Email:    "demo@example.com",
		Balance:  decimal.NewFromInt(1000000),
		Active:   true,
	}
	if existing != nil {
		user = *existing
	} else if err := db.Create(&user).Error; err != nil {
		return err
	}

	instruments := []model.Instrument{
		{Symbol: "RELIANCE", Name: "Reliance Industries", Exchange: "NSE", Active: true, LastClose: decimal.RequireFromString("2500")},
		{Symbol: "TCS", Name: "Tata Consultancy Services", Exchange: "NSE", Active: true, LastClose: decimal.RequireFromString("3600")},
		{Symbol: "INFY", Name: "Infosys", Exchange: "NSE", Active: true, LastClose: decimal.RequireFromString("1500")},
	}
	for i := range instruments {
		if err := db.Where(model.Instrument{Symbol: instruments[i].Symbol}).
			FirstOrCreate(&instruments[i]).Error; err != nil {
			return err
		}
	}

	secret, err := security.GenerateWebhookSecret()
	if err != nil {
		return err
	}
	cipher, err := security.EncryptString(secret)
	if err != nil {
		return err
	}

	strat := model.Strategy{
		UserID:                user.ID,
		Name:                  "demo-reliance",
		Symbol:                "RELIANCE",
		SecretDigest:          security.DigestSecret(secret),
		SecretCipher:          cipher,
		Active:                true,
		MaxTradesPerDay:       10,
		MaxLossPerDay:         decimal.NewFromInt(5000),
		MaxCapitalPerTrade:    decimal.NewFromInt(100000),
		CooldownBetweenTrades: 60,
		CapitalAllocated:      decimal.NewFromInt(500000),
	}
	if err := db.Where(model.Strategy{Name: strat.Name, UserID: user.ID}).
		FirstOrCreate(&strat).Error; err != nil {
		return err
	}

	fmt.Printf("strategy %d webhook secret: %s\n", strat.ID, secret)
	return nil
}

func rotateSecretAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: rotate-secret <strategy-id>")
	}

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid strategy id %q", c.Args().First())
	}

	strategies := repository.NewStrategyRepository()
	strat, err := strategies.FindByID(context.Background(), uint(id))
	if err != nil {
		return err
	}
	if strat == nil {
		return fmt.Errorf("strategy %d not found", id)
	}

	secret, err := security.GenerateWebhookSecret()
	if err != nil {
		return err
	}
	cipher, err := security.EncryptString(secret)
	if err != nil {
		return err
	}

	err = database.MainDB.Model(strat).Updates(map[string]any{
		"secret_digest": security.DigestSecret(secret),
		"secret_cipher": cipher,
	}).Error
	if err != nil {
		return err
	}

	fmt.Printf("strategy %d webhook secret: %s\n", strat.ID, secret)
	return nil
}
