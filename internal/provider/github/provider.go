package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/logai/mergerelay/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

var _ model.EventProvider = (*Provider)(nil)

const (
	eventPullRequest = "pull_request"
	eventPush        = "push"

	signaturePrefix = "sha256="
	refsHeadsPrefix = "refs/heads/"
)

// Provider implements webhook verification and normalization for GitHub.
type Provider struct {
	config model.ProviderConfig
	log    logze.Logger
}

// New creates a new GitHub provider.
func New(cfg model.ProviderConfig) *Provider {
	return &Provider{
		config: cfg,
		log:    logze.With("provider", "github"),
	}
}

func (p *Provider) Name() model.Provider {
	return model.ProviderGitHub
}

// VerifyWebhook validates the X-Hub-Signature-256 header: an HMAC-SHA256 of
// the raw body keyed with the configured secret, hex-encoded and prefixed
// with "sha256=". Comparison is constant-time.
func (p *Provider) VerifyWebhook(body []byte, signature string) error {
	if p.config.Secret == "" {
		return nil // no secret configured, verification is skipped
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return errm.Wrap(model.ErrVerificationFailed, "invalid GitHub signature format")
	}

	mac := hmac.New(sha256.New, []byte(p.config.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.TrimPrefix(signature, signaturePrefix)), []byte(expected)) {
		return errm.Wrap(model.ErrVerificationFailed, "GitHub signature mismatch")
	}

	return nil
}

// NormalizeEvent maps a GitHub webhook payload to a canonical event.
// Only merged pull requests and direct pushes produce events.
func (p *Provider) NormalizeEvent(eventKind string, body []byte) (*model.CanonicalEvent, error) {
	switch eventKind {
	case eventPullRequest:
		return p.normalizePullRequest(body)
	case eventPush:
		return p.normalizePush(body)
	default:
		return nil, errm.Wrap(model.ErrNotApplicable, "unsupported GitHub event kind")
	}
}

func (p *Provider) normalizePullRequest(body []byte) (*model.CanonicalEvent, error) {
	raw, err := github.ParseWebHook(eventPullRequest, body)
	if err != nil {
		return nil, errm.Wrap(model.ErrMalformedPayload, "failed to parse pull_request payload")
	}
	event, ok := raw.(*github.PullRequestEvent)
	if !ok {
		return nil, errm.Wrap(model.ErrMalformedPayload, "unexpected pull_request payload shape")
	}

	pr := event.GetPullRequest()
	if event.GetAction() != "closed" || !pr.GetMerged() {
		p.log.Debug("ignoring pull request event",
			"action", event.GetAction(),
			"merged", pr.GetMerged(),
		)
		return nil, errm.Wrap(model.ErrNotApplicable, "pull request was not merged")
	}

	repository := event.GetRepo().GetFullName()
	baseBranch := pr.GetBase().GetRef()
	commitSHA := pr.GetMergeCommitSHA()
	if commitSHA == "" {
		commitSHA = pr.GetHead().GetSHA()
	}
	mergedAt := pr.GetMergedAt()
	if repository == "" || baseBranch == "" || commitSHA == "" || pr.GetNumber() == 0 || mergedAt.IsZero() {
		return nil, errm.Wrap(model.ErrMalformedPayload, "pull request payload misses required fields")
	}

	return &model.CanonicalEvent{
		EventType:         model.EventTypePRMerge,
		Provider:          model.ProviderGitHub,
		Repository:        repository,
		Branch:            baseBranch,
		BaseBranch:        baseBranch,
		HeadBranch:        pr.GetHead().GetRef(),
		PRNumber:          pr.GetNumber(),
		PRTitle:           pr.GetTitle(),
		PRDescription:     pr.GetBody(),
		Author:            pr.GetUser().GetLogin(),
		CommitSHA:         commitSHA,
		MergedAt:          mergedAt.Format(time.RFC3339),
		FilesChanged:      []string{},
		Additions:         pr.GetAdditions(),
		Deletions:         pr.GetDeletions(),
		ChangedFilesCount: pr.GetChangedFiles(),
		ProcessedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (p *Provider) normalizePush(body []byte) (*model.CanonicalEvent, error) {
	raw, err := github.ParseWebHook(eventPush, body)
	if err != nil {
		return nil, errm.Wrap(model.ErrMalformedPayload, "failed to parse push payload")
	}
	event, ok := raw.(*github.PushEvent)
	if !ok {
		return nil, errm.Wrap(model.ErrMalformedPayload, "unexpected push payload shape")
	}

	branch := strings.TrimPrefix(event.GetRef(), refsHeadsPrefix)
	repository := event.GetRepo().GetFullName()
	commitSHA := event.GetHeadCommit().GetID()
	if commitSHA == "" {
		commitSHA = event.GetAfter()
	}
	if repository == "" || event.GetRef() == "" || commitSHA == "" {
		return nil, errm.Wrap(model.ErrMalformedPayload, "push payload misses required fields")
	}

	files := []string{}
	mergedAt := time.Now().UTC().Format(time.RFC3339)
	if head := event.GetHeadCommit(); head != nil {
		files = append(files, head.Added...)
		files = append(files, head.Modified...)
		files = append(files, head.Removed...)
		if ts := head.GetTimestamp(); !ts.IsZero() {
			mergedAt = ts.Format(time.RFC3339)
		}
	}

	return &model.CanonicalEvent{
		EventType:         model.EventTypePRMerge,
		Provider:          model.ProviderGitHub,
		Repository:        repository,
		Branch:            branch,
		BaseBranch:        branch,
		HeadBranch:        branch,
		PRNumber:          0, // direct push
		Author:            event.GetPusher().GetName(),
		CommitSHA:         commitSHA,
		MergedAt:          mergedAt,
		FilesChanged:      files,
		ChangedFilesCount: len(files),
		ProcessedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}
