package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/logai/mergerelay/internal/app"
	"github.com/logai/mergerelay/internal/config"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	debug      = kingpin.Flag("debug", "enable debug logging").Bool()
)

func main() {
	kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}

	logze.Init(logze.C().WithConsole().WithLevel(lang.If(*debug, logze.LevelDebug, logze.LevelInfo)))

	relay, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "create service")
	}

	if err := relay.Start(ctx); err != nil {
		return erro.Wrap(err, "start service")
	}

	<-ctx.Done()

	return nil
}
