package model

// EventTypePRMerge is the single event type this service emits downstream.
const EventTypePRMerge = "pr_merge"

// Provider identifies a supported webhook source.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitLab Provider = "gitlab"
)

// BranchType classifies a target branch against the configured name sets.
type BranchType string

const (
	BranchTypeMain    BranchType = "main"
	BranchTypeStaging BranchType = "staging"
	BranchTypeFeature BranchType = "feature"
)

// RiskLevel is the coarse risk classification of a merge or push.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// CanonicalEvent is the provider-agnostic representation of a PR/MR merge or
// a direct push to a monitored branch. Every field is populated when the
// event is built: absent provider data resolves to a zero count, an empty
// string or an empty file list, never to a nil marker. The struct is built
// once per inbound webhook and is not mutated after the pipeline fills in
// the derived fields.
type CanonicalEvent struct {
	EventType         string     `json:"event_type"`
	Provider          Provider   `json:"provider"`
	Repository        string     `json:"repository"`
	Branch            string     `json:"branch"`
	BaseBranch        string     `json:"base_branch"`
	HeadBranch        string     `json:"head_branch"`
	PRNumber          int        `json:"pr_number"`
	PRTitle           string     `json:"pr_title"`
	PRDescription     string     `json:"pr_description"`
	Author            string     `json:"author"`
	CommitSHA         string     `json:"commit_sha"`
	MergedAt          string     `json:"merged_at"`
	FilesChanged      []string   `json:"files_changed"`
	Additions         int        `json:"additions"`
	Deletions         int        `json:"deletions"`
	ChangedFilesCount int        `json:"changed_files_count"`
	ProcessedAt       string     `json:"processed_at"`
	EventID           string     `json:"event_id"`
	BranchType        BranchType `json:"branch_type"`
	RiskLevel         RiskLevel  `json:"risk_level"`
}

// IsDirectPush reports whether the event came from a push with no associated
// PR/MR.
func (e *CanonicalEvent) IsDirectPush() bool {
	return e.PRNumber == 0
}

// DispatchErrorKind describes why a downstream delivery did not complete.
type DispatchErrorKind string

const (
	DispatchNotConfigured    DispatchErrorKind = "not_configured"
	DispatchTimeout          DispatchErrorKind = "timeout"
	DispatchNetworkError     DispatchErrorKind = "network_error"
	DispatchNonSuccessStatus DispatchErrorKind = "non_success_status"
)

// DispatchResult reports the outcome of one downstream delivery attempt.
// A failed delivery never fails the inbound webhook, so the result carries
// the error kind instead of an error value.
type DispatchResult struct {
	Delivered  bool              `json:"delivered"`
	StatusCode int               `json:"status_code,omitempty"`
	Error      DispatchErrorKind `json:"error,omitempty"`
}
