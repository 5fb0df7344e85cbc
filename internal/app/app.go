package app

import (
	"context"

	"github.com/logai/mergerelay/internal/config"
	"github.com/logai/mergerelay/internal/dispatch"
	"github.com/logai/mergerelay/internal/journal"
	"github.com/logai/mergerelay/internal/pipeline"
	"github.com/logai/mergerelay/internal/provider"
	"github.com/logai/mergerelay/internal/server"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

// Relay is the main service that wires all components together.
type Relay struct {
	server *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates a new webhook relay service.
func New(ctx contem.Context, cfg config.Config) (*Relay, error) {
	service := &Relay{
		cfg: cfg,
		log: logze.With("module", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, erro.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// Start starts the webhook server.
func (s *Relay) Start(ctx context.Context) error {
	if err := s.server.Start(ctx); err != nil {
		return erro.Wrap(err, "failed to start webhook server")
	}
	return nil
}

func (s *Relay) init(ctx contem.Context, cfg config.Config) error {
	providers := provider.NewRegistry(cfg.Webhook)

	dispatcher, err := dispatch.New(cfg.Workflow)
	if err != nil {
		return erro.Wrap(err, "failed to create dispatcher")
	}

	jrnl, err := journal.New(cfg.Journal)
	if err != nil {
		return erro.Wrap(err, "failed to create journal")
	}

	pl, err := pipeline.New(cfg.Pipeline, providers, dispatcher, jrnl)
	if err != nil {
		return erro.Wrap(err, "failed to create pipeline")
	}

	s.server, err = server.New(cfg.Server, pl, jrnl)
	if err != nil {
		return erro.Wrap(err, "failed to create webhook server")
	}
	ctx.Add(s.server.Stop)

	return nil
}
