package pipeline

import (
	"context"

	"github.com/logai/mergerelay/internal/journal"
	"github.com/logai/mergerelay/internal/model"
	"github.com/logai/mergerelay/internal/provider"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

// Request is one inbound webhook as handed over by the HTTP layer: the
// provider tag, the event kind header, the signature or token header and the
// raw body.
type Request struct {
	Provider   model.Provider
	EventKind  string
	Auth       string
	DeliveryID string
	Body       []byte
}

// Outcome is the result of processing one inbound webhook. Applicable is
// false when the event carried no merge semantics; Event and Dispatch are
// set only for applicable events.
type Outcome struct {
	Applicable bool
	Event      *model.CanonicalEvent
	Dispatch   model.DispatchResult
}

// Pipeline runs verification, normalization, classification, risk
// assessment and identity derivation for inbound webhooks and hands the
// resulting event to the dispatcher. It holds no mutable state besides the
// journal, so concurrent requests need no locking.
type Pipeline struct {
	cfg        Config
	providers  *provider.Registry
	dispatcher model.WorkflowDispatcher
	journal    *journal.Journal
	log        logze.Logger
}

// New creates a new processing pipeline.
func New(cfg Config, providers *provider.Registry, dispatcher model.WorkflowDispatcher, jrnl *journal.Journal) (*Pipeline, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	return &Pipeline{
		cfg:        cfg,
		providers:  providers,
		dispatcher: dispatcher,
		journal:    jrnl,
		log:        logze.With("module", "pipeline"),
	}, nil
}

// Process handles one inbound webhook end to end. Verification and
// malformed-payload failures are returned as errors for the HTTP layer to
// map; a failed dispatch is reported inside the outcome and never fails the
// inbound request.
func (p *Pipeline) Process(ctx context.Context, req Request) (Outcome, error) {
	timer := abstract.StartTimer()

	prov, ok := p.providers.Get(req.Provider)
	if !ok {
		return Outcome{}, erro.New("unknown provider: %s", req.Provider)
	}

	if err := prov.VerifyWebhook(req.Body, req.Auth); err != nil {
		return Outcome{}, err
	}

	log := p.log.WithFields(
		"provider", req.Provider,
		"event_kind", req.EventKind,
		"delivery_id", req.DeliveryID,
	)

	event, err := prov.NormalizeEvent(req.EventKind, req.Body)
	if err != nil {
		if errm.Is(err, model.ErrNotApplicable) {
			log.Debug("event ignored", "reason", err.Error())
			return Outcome{}, nil
		}
		return Outcome{}, err
	}

	event.BranchType = ClassifyBranch(event.Branch, p.cfg)
	if event.IsDirectPush() && event.BranchType == model.BranchTypeFeature {
		// direct pushes matter only on monitored branches
		log.Debug("ignoring push to unmonitored branch", "branch", event.Branch)
		return Outcome{}, nil
	}

	event.RiskLevel = AssessRisk(event.BranchType, event.ChangedFilesCount, event.Additions, event.Deletions, p.cfg)
	event.EventID = BuildEventID(event.Provider, event.Repository, event.PRNumber, event.CommitSHA)

	p.journal.Record(event)

	result := p.dispatcher.Dispatch(ctx, event)
	if result.Delivered {
		log.Info("event dispatched",
			"event_id", event.EventID,
			"repository", event.Repository,
			"branch_type", event.BranchType,
			"risk_level", event.RiskLevel,
			"status_code", result.StatusCode,
			"elapsed_time", timer.ElapsedTime().String(),
		)
	} else {
		log.Warn("event was not delivered",
			"event_id", event.EventID,
			"error_kind", result.Error,
			"status_code", result.StatusCode,
		)
	}

	return Outcome{Applicable: true, Event: event, Dispatch: result}, nil
}
