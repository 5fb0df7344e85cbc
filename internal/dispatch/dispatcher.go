package dispatch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/logai/mergerelay/internal/model"
	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "mergerelay/1.0"
)

// Config represents downstream workflow endpoint configuration. An empty URL
// disables forwarding: events are still processed and journaled, dispatch
// reports not_configured.
type Config struct {
	URL       string        `yaml:"url" env:"WORKFLOW_WEBHOOK_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"WORKFLOW_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"WORKFLOW_USER_AGENT"`
}

func (c *Config) PrepareAndValidate() error {
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	c.UserAgent = lang.Check(c.UserAgent, defaultUserAgent)

	return nil
}

var _ model.WorkflowDispatcher = (*Dispatcher)(nil)

// Dispatcher delivers canonical events to the configured workflow endpoint
// with a single bounded POST per event. Retries, if any, belong to the
// consumer side.
type Dispatcher struct {
	cfg Config
	cli *cliex.HTTP
	log logze.Logger
}

// New creates a new workflow dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	d := &Dispatcher{
		cfg: cfg,
		log: logze.With("module", "dispatch"),
	}

	if cfg.URL == "" {
		d.log.Warn("workflow webhook URL is not configured, events will not be forwarded")
		return d, nil
	}

	cli, err := cliex.NewWithConfig(cliex.Config{
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, erro.Wrap(err, "failed to create HTTP client")
	}
	d.cli = cli

	return d, nil
}

// Dispatch posts the canonical event as JSON to the workflow endpoint.
// Delivery failures are reported in the result, never as an error: the
// inbound webhook counts as processed regardless of downstream health.
func (d *Dispatcher) Dispatch(ctx context.Context, event *model.CanonicalEvent) model.DispatchResult {
	if d.cli == nil {
		return model.DispatchResult{Error: model.DispatchNotConfigured}
	}

	resp, err := d.cli.Post(ctx, d.cfg.URL, event)
	if err != nil {
		result := model.DispatchResult{Error: model.DispatchNetworkError}
		if resp != nil {
			result.StatusCode = resp.StatusCode()
		}
		switch {
		case isTimeout(err):
			result.Error = model.DispatchTimeout
		case result.StatusCode >= http.StatusMultipleChoices:
			result.Error = model.DispatchNonSuccessStatus
		}

		d.log.Warn("workflow dispatch failed",
			"url", d.cfg.URL,
			"event_id", event.EventID,
			"error_kind", result.Error,
			"error", err.Error(),
		)
		return result
	}

	if resp.StatusCode() >= http.StatusMultipleChoices {
		return model.DispatchResult{StatusCode: resp.StatusCode(), Error: model.DispatchNonSuccessStatus}
	}

	return model.DispatchResult{Delivered: true, StatusCode: resp.StatusCode()}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
