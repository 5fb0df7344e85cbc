package pipeline

import "github.com/maxbolgarin/lang"

const (
	defaultLargeChangeFiles = 20
	defaultLargeChangeLines = 1000
)

var (
	defaultMainBranches    = []string{"main", "master"}
	defaultStagingBranches = []string{"staging", "develop", "dev"}
)

// Config represents branch classification and risk policy configuration.
type Config struct {
	MainBranches    []string `yaml:"main_branches" env:"MAIN_BRANCHES" env-separator:","`
	StagingBranches []string `yaml:"staging_branches" env:"STAGING_BRANCHES" env-separator:","`

	// LargeChangeFiles and LargeChangeLines are the escalation thresholds
	// for the risk heuristic: merges to main or staging with more changed
	// files or changed lines than these become high risk.
	LargeChangeFiles int `yaml:"large_change_files" env:"RISK_LARGE_CHANGE_FILES"`
	LargeChangeLines int `yaml:"large_change_lines" env:"RISK_LARGE_CHANGE_LINES"`
}

func (c *Config) PrepareAndValidate() error {
	if len(c.MainBranches) == 0 {
		c.MainBranches = defaultMainBranches
	}
	if len(c.StagingBranches) == 0 {
		c.StagingBranches = defaultStagingBranches
	}
	c.LargeChangeFiles = lang.Check(c.LargeChangeFiles, defaultLargeChangeFiles)
	c.LargeChangeLines = lang.Check(c.LargeChangeLines, defaultLargeChangeLines)

	return nil
}
