package pipeline

import (
	"slices"

	"github.com/logai/mergerelay/internal/model"
)

// ClassifyBranch maps a branch name to its type using the configured name
// sets. Matching is a case-sensitive exact comparison, so "Main" stays a
// feature branch unless listed explicitly. Classification depends only on
// the name and configuration, never on the provider.
func ClassifyBranch(branch string, cfg Config) model.BranchType {
	if slices.Contains(cfg.MainBranches, branch) {
		return model.BranchTypeMain
	}
	if slices.Contains(cfg.StagingBranches, branch) {
		return model.BranchTypeStaging
	}
	return model.BranchTypeFeature
}
