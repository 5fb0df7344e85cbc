package gitlab

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/logai/mergerelay/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

var _ model.EventProvider = (*Provider)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	eventMergeRequestHook = "Merge Request Hook"
	eventPushHook         = "Push Hook"

	actionMerge     = "merge"
	refsHeadsPrefix = "refs/heads/"
)

// Provider implements webhook verification and normalization for GitLab.
type Provider struct {
	config model.ProviderConfig
	log    logze.Logger
}

// New creates a new GitLab provider.
func New(cfg model.ProviderConfig) *Provider {
	return &Provider{
		config: cfg,
		log:    logze.With("provider", "gitlab"),
	}
}

func (p *Provider) Name() model.Provider {
	return model.ProviderGitLab
}

// VerifyWebhook compares the X-Gitlab-Token header verbatim against the
// configured secret.
func (p *Provider) VerifyWebhook(body []byte, token string) error {
	if p.config.Secret == "" {
		return nil // no secret configured, verification is skipped
	}

	if token != p.config.Secret {
		return errm.Wrap(model.ErrVerificationFailed, "GitLab token mismatch")
	}

	return nil
}

// NormalizeEvent maps a GitLab webhook payload to a canonical event.
// Only merged merge requests and direct pushes produce events.
func (p *Provider) NormalizeEvent(eventKind string, body []byte) (*model.CanonicalEvent, error) {
	switch eventKind {
	case eventMergeRequestHook:
		return p.normalizeMergeRequest(body)
	case eventPushHook:
		return p.normalizePush(body)
	default:
		return nil, errm.Wrap(model.ErrNotApplicable, "unsupported GitLab event kind")
	}
}

func (p *Provider) normalizeMergeRequest(body []byte) (*model.CanonicalEvent, error) {
	var event gitlab.MergeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errm.Wrap(model.ErrMalformedPayload, "failed to parse merge request payload")
	}

	attrs := event.ObjectAttributes
	if attrs.Action != actionMerge {
		p.log.Debug("ignoring merge request event", "action", attrs.Action)
		return nil, errm.Wrap(model.ErrNotApplicable, "merge request was not merged")
	}

	repository := event.Project.PathWithNamespace
	commitSHA := attrs.MergeCommitSHA
	if commitSHA == "" {
		commitSHA = attrs.LastCommit.ID
	}
	if repository == "" || attrs.TargetBranch == "" || attrs.IID == 0 || commitSHA == "" || attrs.UpdatedAt == "" {
		return nil, errm.Wrap(model.ErrMalformedPayload, "merge request payload misses required fields")
	}

	var author string
	if event.User != nil {
		author = event.User.Username
	}

	return &model.CanonicalEvent{
		EventType:     model.EventTypePRMerge,
		Provider:      model.ProviderGitLab,
		Repository:    repository,
		Branch:        attrs.TargetBranch,
		BaseBranch:    attrs.TargetBranch,
		HeadBranch:    attrs.SourceBranch,
		PRNumber:      attrs.IID,
		PRTitle:       attrs.Title,
		PRDescription: attrs.Description,
		Author:        author,
		CommitSHA:     commitSHA,
		MergedAt:      attrs.UpdatedAt,
		FilesChanged:  []string{},
		ProcessedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (p *Provider) normalizePush(body []byte) (*model.CanonicalEvent, error) {
	var event gitlab.PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errm.Wrap(model.ErrMalformedPayload, "failed to parse push payload")
	}

	branch := strings.TrimPrefix(event.Ref, refsHeadsPrefix)
	repository := event.Project.PathWithNamespace
	commitSHA := event.CheckoutSHA
	if commitSHA == "" {
		commitSHA = event.After
	}
	if repository == "" || event.Ref == "" || commitSHA == "" {
		return nil, errm.Wrap(model.ErrMalformedPayload, "push payload misses required fields")
	}

	author := event.UserUsername
	if author == "" {
		author = event.UserName
	}

	// The push hook carries file lists per commit, aggregate them in order
	// without duplicates.
	files := []string{}
	seen := make(map[string]struct{})
	for _, commit := range event.Commits {
		for _, path := range slicesJoin(commit.Added, commit.Modified, commit.Removed) {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	return &model.CanonicalEvent{
		EventType:         model.EventTypePRMerge,
		Provider:          model.ProviderGitLab,
		Repository:        repository,
		Branch:            branch,
		BaseBranch:        branch,
		HeadBranch:        branch,
		PRNumber:          0, // direct push
		Author:            author,
		CommitSHA:         commitSHA,
		MergedAt:          time.Now().UTC().Format(time.RFC3339),
		FilesChanged:      files,
		ChangedFilesCount: len(files),
		ProcessedAt:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func slicesJoin(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}
