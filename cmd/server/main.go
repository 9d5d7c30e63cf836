package main

import (
	"os"

	"go-gin-raffle/config"
	"go-gin-raffle/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "raffle"
	app.Usage = "single-asset raffle service"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "TOML config file",
			EnvVar: "RAFFLE_CONFIG",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "start the HTTP API, deadline poller and resolve worker",
			Action: serve,
		},
		{
			Name:   "migrate",
			Usage:  "create tables if they do not exist",
			Action: migrate,
		},
	}
	app.Action = serve

	if err := app.Run(os.Args); err != nil {
		logger.L.Fatal("raffle exited", zap.Error(err))
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	// flag 優先於已存在的 RAFFLE_CONFIG
	if path := c.GlobalString("config"); path != "" {
		if err := os.Setenv("RAFFLE_CONFIG", path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Server.LogLevel)
	return cfg, nil
}
