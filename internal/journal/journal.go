package journal

import (
	"sync"

	"github.com/logai/mergerelay/internal/model"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
)

const defaultCapacity = 1000

// Config represents the in-memory event journal configuration.
type Config struct {
	Capacity int `yaml:"capacity" env:"JOURNAL_CAPACITY"`
}

func (c *Config) PrepareAndValidate() error {
	c.Capacity = lang.Check(c.Capacity, defaultCapacity)

	return nil
}

// Journal keeps a bounded in-memory record of processed events for the
// operator endpoints. It is not a dedup store: provider redeliveries are
// recorded as separate entries, deduplication by event_id is the downstream
// consumer's job.
type Journal struct {
	cfg Config

	mu           sync.RWMutex
	events       []*model.CanonicalEvent
	total        int
	lastAt       string
	byProvider   map[string]int
	byBranchType map[string]int
	byRiskLevel  map[string]int
}

// Stats is an aggregate view over all recorded events. Counters keep
// growing after old events fall out of the bounded journal.
type Stats struct {
	TotalEvents      int            `json:"total_events"`
	ProviderCounts   map[string]int `json:"provider_counts"`
	BranchTypeCounts map[string]int `json:"branch_type_counts"`
	RiskLevelCounts  map[string]int `json:"risk_level_counts"`
	LastProcessed    string         `json:"last_processed,omitempty"`
}

// New creates a new event journal.
func New(cfg Config) (*Journal, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	return &Journal{
		cfg:          cfg,
		byProvider:   make(map[string]int),
		byBranchType: make(map[string]int),
		byRiskLevel:  make(map[string]int),
	}, nil
}

// Record appends the event and updates the per-dimension counters, dropping
// the oldest entries past the configured capacity.
func (j *Journal) Record(event *model.CanonicalEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = append(j.events, event)
	if len(j.events) > j.cfg.Capacity {
		j.events = j.events[len(j.events)-j.cfg.Capacity:]
	}

	j.total++
	j.lastAt = event.ProcessedAt
	j.byProvider[string(event.Provider)]++
	j.byBranchType[string(event.BranchType)]++
	j.byRiskLevel[string(event.RiskLevel)]++
}

// Recent returns up to limit most recent events, oldest first.
func (j *Journal) Recent(limit int) []*model.CanonicalEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 || limit > len(j.events) {
		limit = len(j.events)
	}
	out := make([]*model.CanonicalEvent, limit)
	copy(out, j.events[len(j.events)-limit:])

	return out
}

// Stats returns a snapshot of the aggregate counters.
func (j *Journal) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return Stats{
		TotalEvents:      j.total,
		ProviderCounts:   copyMap(j.byProvider),
		BranchTypeCounts: copyMap(j.byBranchType),
		RiskLevelCounts:  copyMap(j.byRiskLevel),
		LastProcessed:    j.lastAt,
	}
}

func copyMap(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
