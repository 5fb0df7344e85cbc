package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/logai/mergerelay/internal/journal"
	"github.com/logai/mergerelay/internal/model"
	"github.com/logai/mergerelay/internal/pipeline"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"
)

const (
	githubEndpoint = "/webhooks/github"
	gitlabEndpoint = "/webhooks/gitlab"
	eventsEndpoint = "/events"
	statsEndpoint  = "/stats"

	defaultEventsLimit = 100
)

// Server exposes the webhook endpoints for the supported providers plus the
// operator endpoints over the event journal.
type Server struct {
	pipeline *pipeline.Pipeline
	journal  *journal.Journal
	config   Config
	log      logze.Logger
	server   *servex.Server
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type eventsResponse struct {
	Count  int                     `json:"count"`
	Events []*model.CanonicalEvent `json:"events"`
}

// New creates a new webhook server.
func New(cfg Config, pl *pipeline.Pipeline, jrnl *journal.Journal) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	h := &Server{
		pipeline: pl,
		journal:  jrnl,
		config:   cfg,
		log:      log,
		server:   server,
	}

	server.HandleFunc(githubEndpoint, h.handleGithubWebhook)
	server.HandleFunc(gitlabEndpoint, h.handleGitlabWebhook)
	server.HandleFunc(eventsEndpoint, h.handleEvents)
	server.HandleFunc(statsEndpoint, h.handleStats)

	return h, nil
}

// Start starts the webhook server.
func (h *Server) Start(ctx context.Context) error {
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the webhook server.
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *Server) handleGithubWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, pipeline.Request{
		Provider:   model.ProviderGitHub,
		EventKind:  r.Header.Get("X-GitHub-Event"),
		Auth:       r.Header.Get("X-Hub-Signature-256"),
		DeliveryID: r.Header.Get("X-GitHub-Delivery"),
	})
}

func (h *Server) handleGitlabWebhook(w http.ResponseWriter, r *http.Request) {
	h.handleWebhook(w, r, pipeline.Request{
		Provider:  model.ProviderGitLab,
		EventKind: r.Header.Get("X-Gitlab-Event"),
		Auth:      r.Header.Get("X-Gitlab-Token"),
	})
}

// handleWebhook runs the pipeline for one inbound webhook and maps its error
// taxonomy to response codes. Dispatch failures are contained inside the
// pipeline: the provider gets 200 as long as verification and normalization
// succeeded.
func (h *Server) handleWebhook(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodPost {
		ctx.Response(http.StatusMethodNotAllowed, errorResponse{Detail: "method not allowed"})
		return
	}

	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read webhook body")
		return
	}
	req.Body = body

	// No cancellation propagation into the dispatcher: a disconnecting
	// provider must not abort an in-flight downstream call.
	outcome, err := h.pipeline.Process(context.WithoutCancel(r.Context()), req)
	switch {
	case err == nil:
	case errm.Is(err, model.ErrVerificationFailed):
		h.log.Warn("webhook verification failed", "provider", req.Provider, "remote_addr", r.RemoteAddr)
		ctx.Response(http.StatusUnauthorized, errorResponse{Detail: "invalid signature"})
		return
	case errm.Is(err, model.ErrMalformedPayload):
		ctx.Response(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		return
	default:
		ctx.InternalServerError(err, "failed to process webhook")
		return
	}

	if !outcome.Applicable {
		h.log.Debug("webhook accepted without event", "provider", req.Provider, "event_kind", req.EventKind)
	}

	ctx.Response(http.StatusOK, statusResponse{Status: "processed"})
}

func (h *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodGet {
		ctx.Response(http.StatusMethodNotAllowed, errorResponse{Detail: "method not allowed"})
		return
	}

	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			ctx.Response(http.StatusBadRequest, errorResponse{Detail: "invalid limit"})
			return
		}
		limit = parsed
	}

	events := h.journal.Recent(limit)
	ctx.Response(http.StatusOK, eventsResponse{Count: len(events), Events: events})
}

func (h *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	if r.Method != http.MethodGet {
		ctx.Response(http.StatusMethodNotAllowed, errorResponse{Detail: "method not allowed"})
		return
	}

	ctx.Response(http.StatusOK, h.journal.Stats())
}
