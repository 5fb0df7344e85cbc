package pipeline

import "github.com/logai/mergerelay/internal/model"

// AssessRisk derives a coarse risk level from the branch type and the change
// magnitude. Feature branches are always low. Staging and main start at
// medium and escalate to high on large changes, so a merge to main can never
// be low. This is a deliberately simple heuristic and the extension point
// for model-driven scoring later.
func AssessRisk(branchType model.BranchType, changedFiles, additions, deletions int, cfg Config) model.RiskLevel {
	if branchType == model.BranchTypeFeature {
		return model.RiskLevelLow
	}
	if changedFiles > cfg.LargeChangeFiles || additions+deletions > cfg.LargeChangeLines {
		return model.RiskLevelHigh
	}
	return model.RiskLevelMedium
}
