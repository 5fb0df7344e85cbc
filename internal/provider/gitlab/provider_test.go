package gitlab_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/logai/mergerelay/internal/model"
	"github.com/logai/mergerelay/internal/provider/gitlab"
)

const mergedMRPayload = `{
	"object_kind": "merge_request",
	"user": {"username": "gitlab_dev"},
	"project": {"path_with_namespace": "acme/logai"},
	"object_attributes": {
		"iid": 7,
		"action": "merge",
		"title": "Tighten retention policy",
		"description": "Caps journal growth",
		"target_branch": "main",
		"source_branch": "feature/retention",
		"merge_commit_sha": "deadbeefcafe1234",
		"updated_at": "2024-05-01 10:30:00 UTC",
		"last_commit": {"id": "9999888877776666"}
	}
}`

const pushToDevelopPayload = `{
	"object_kind": "push",
	"ref": "refs/heads/develop",
	"checkout_sha": "cafebabe12345678",
	"after": "cafebabe12345678",
	"user_username": "gitlab_dev",
	"user_name": "GitLab Dev",
	"project": {"path_with_namespace": "acme/logai"},
	"commits": [
		{"added": ["journal.go"], "modified": ["config.go"], "removed": []},
		{"added": [], "modified": ["journal.go"], "removed": ["legacy.go"]}
	]
}`

func TestVerifyWebhook(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr bool
	}{
		{name: "matching token", secret: "t0ken", token: "t0ken"},
		{name: "wrong token", secret: "t0ken", token: "other", wantErr: true},
		{name: "missing token with configured secret", secret: "t0ken", wantErr: true},
		{name: "no secret configured skips verification", token: "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := gitlab.New(model.ProviderConfig{Secret: tt.secret})
			err := p.VerifyWebhook([]byte(`{}`), tt.token)
			if tt.wantErr {
				if !errors.Is(err, model.ErrVerificationFailed) {
					t.Fatalf("expected verification failure, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeMergedMergeRequest(t *testing.T) {
	p := gitlab.New(model.ProviderConfig{})

	event, err := p.NormalizeEvent("Merge Request Hook", []byte(mergedMRPayload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if event.Provider != model.ProviderGitLab {
		t.Errorf("provider = %q", event.Provider)
	}
	if event.Repository != "acme/logai" {
		t.Errorf("repository = %q", event.Repository)
	}
	if event.Branch != "main" || event.BaseBranch != "main" {
		t.Errorf("branch = %q, base_branch = %q", event.Branch, event.BaseBranch)
	}
	if event.HeadBranch != "feature/retention" {
		t.Errorf("head_branch = %q", event.HeadBranch)
	}
	if event.PRNumber != 7 {
		t.Errorf("pr_number = %d", event.PRNumber)
	}
	if event.PRTitle != "Tighten retention policy" {
		t.Errorf("pr_title = %q", event.PRTitle)
	}
	if event.Author != "gitlab_dev" {
		t.Errorf("author = %q", event.Author)
	}
	if event.CommitSHA != "deadbeefcafe1234" {
		t.Errorf("commit_sha = %q", event.CommitSHA)
	}
	if event.MergedAt != "2024-05-01 10:30:00 UTC" {
		t.Errorf("merged_at = %q, want GitLab timestamp passed through verbatim", event.MergedAt)
	}
}

func TestNormalizeMergeRequestFallsBackToLastCommit(t *testing.T) {
	p := gitlab.New(model.ProviderConfig{})

	payload := `{
		"project": {"path_with_namespace": "acme/logai"},
		"object_attributes": {
			"iid": 7,
			"action": "merge",
			"target_branch": "main",
			"updated_at": "2024-05-01 10:30:00 UTC",
			"last_commit": {"id": "9999888877776666"}
		}
	}`

	event, err := p.NormalizeEvent("Merge Request Hook", []byte(payload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if event.CommitSHA != "9999888877776666" {
		t.Errorf("commit_sha = %q, want last commit fallback", event.CommitSHA)
	}
}

func TestNormalizeMergeRequestNotApplicable(t *testing.T) {
	p := gitlab.New(model.ProviderConfig{})

	tests := []struct {
		name    string
		kind    string
		payload string
	}{
		{
			name:    "open action",
			kind:    "Merge Request Hook",
			payload: `{"object_attributes":{"iid":7,"action":"open","target_branch":"main"}}`,
		},
		{
			name:    "close action",
			kind:    "Merge Request Hook",
			payload: `{"object_attributes":{"iid":7,"action":"close","target_branch":"main"}}`,
		},
		{
			name:    "unsupported event kind",
			kind:    "Note Hook",
			payload: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.NormalizeEvent(tt.kind, []byte(tt.payload))
			if !errors.Is(err, model.ErrNotApplicable) {
				t.Fatalf("expected not applicable, got %v", err)
			}
		})
	}
}

func TestNormalizeMergeRequestMalformed(t *testing.T) {
	p := gitlab.New(model.ProviderConfig{})

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "invalid json",
			payload: `{not json`,
		},
		{
			name:    "missing target branch",
			payload: `{"project":{"path_with_namespace":"acme/logai"},"object_attributes":{"iid":7,"action":"merge","merge_commit_sha":"abc","updated_at":"2024-05-01 10:30:00 UTC"}}`,
		},
		{
			name:    "missing commit sha",
			payload: `{"project":{"path_with_namespace":"acme/logai"},"object_attributes":{"iid":7,"action":"merge","target_branch":"main","updated_at":"2024-05-01 10:30:00 UTC"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.NormalizeEvent("Merge Request Hook", []byte(tt.payload))
			if !errors.Is(err, model.ErrMalformedPayload) {
				t.Fatalf("expected malformed payload, got %v", err)
			}
		})
	}
}

func TestNormalizePush(t *testing.T) {
	p := gitlab.New(model.ProviderConfig{})

	event, err := p.NormalizeEvent("Push Hook", []byte(pushToDevelopPayload))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if event.Branch != "develop" {
		t.Errorf("branch = %q, want ref prefix stripped", event.Branch)
	}
	if event.PRNumber != 0 {
		t.Errorf("pr_number = %d, want 0 for direct push", event.PRNumber)
	}
	if event.Author != "gitlab_dev" {
		t.Errorf("author = %q", event.Author)
	}
	if event.CommitSHA != "cafebabe12345678" {
		t.Errorf("commit_sha = %q", event.CommitSHA)
	}
	wantFiles := []string{"journal.go", "config.go", "legacy.go"}
	if !reflect.DeepEqual(event.FilesChanged, wantFiles) {
		t.Errorf("files_changed = %v, want deduplicated %v", event.FilesChanged, wantFiles)
	}
	if event.ChangedFilesCount != 3 {
		t.Errorf("changed_files_count = %d", event.ChangedFilesCount)
	}
}
