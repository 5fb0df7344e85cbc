package journal_test

import (
	"fmt"
	"testing"

	"github.com/logai/mergerelay/internal/journal"
	"github.com/logai/mergerelay/internal/model"
)

func newJournal(t *testing.T, cfg journal.Config) *journal.Journal {
	t.Helper()

	j, err := journal.New(cfg)
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}
	return j
}

func event(i int) *model.CanonicalEvent {
	return &model.CanonicalEvent{
		EventType:   model.EventTypePRMerge,
		Provider:    model.ProviderGitHub,
		Repository:  "acme/logai",
		Branch:      "main",
		BranchType:  model.BranchTypeMain,
		RiskLevel:   model.RiskLevelMedium,
		EventID:     fmt.Sprintf("github_acme_logai_%d_abcdef12", i),
		ProcessedAt: fmt.Sprintf("2024-05-01T10:30:%02dZ", i),
	}
}

func TestRecordAndRecent(t *testing.T) {
	j := newJournal(t, journal.Config{})

	for i := 0; i < 5; i++ {
		j.Record(event(i))
	}

	recent := j.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	// oldest first within the window
	if recent[0].EventID != "github_acme_logai_2_abcdef12" {
		t.Errorf("first = %q", recent[0].EventID)
	}
	if recent[2].EventID != "github_acme_logai_4_abcdef12" {
		t.Errorf("last = %q", recent[2].EventID)
	}

	all := j.Recent(0)
	if len(all) != 5 {
		t.Errorf("len(all) = %d, want 5", len(all))
	}

	over := j.Recent(100)
	if len(over) != 5 {
		t.Errorf("len(over) = %d, want 5", len(over))
	}
}

func TestBoundedCapacity(t *testing.T) {
	j := newJournal(t, journal.Config{Capacity: 3})

	for i := 0; i < 10; i++ {
		j.Record(event(i))
	}

	recent := j.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want capacity 3", len(recent))
	}
	if recent[0].EventID != "github_acme_logai_7_abcdef12" {
		t.Errorf("oldest kept = %q", recent[0].EventID)
	}

	// counters survive eviction
	if stats := j.Stats(); stats.TotalEvents != 10 {
		t.Errorf("total = %d, want 10", stats.TotalEvents)
	}
}

func TestStats(t *testing.T) {
	j := newJournal(t, journal.Config{})

	j.Record(&model.CanonicalEvent{
		Provider: model.ProviderGitHub, BranchType: model.BranchTypeMain,
		RiskLevel: model.RiskLevelHigh, ProcessedAt: "2024-05-01T10:30:00Z",
	})
	j.Record(&model.CanonicalEvent{
		Provider: model.ProviderGitLab, BranchType: model.BranchTypeStaging,
		RiskLevel: model.RiskLevelMedium, ProcessedAt: "2024-05-01T10:31:00Z",
	})
	j.Record(&model.CanonicalEvent{
		Provider: model.ProviderGitHub, BranchType: model.BranchTypeMain,
		RiskLevel: model.RiskLevelMedium, ProcessedAt: "2024-05-01T10:32:00Z",
	})

	stats := j.Stats()
	if stats.TotalEvents != 3 {
		t.Errorf("total = %d", stats.TotalEvents)
	}
	if stats.ProviderCounts["github"] != 2 || stats.ProviderCounts["gitlab"] != 1 {
		t.Errorf("provider counts = %v", stats.ProviderCounts)
	}
	if stats.BranchTypeCounts["main"] != 2 || stats.BranchTypeCounts["staging"] != 1 {
		t.Errorf("branch type counts = %v", stats.BranchTypeCounts)
	}
	if stats.RiskLevelCounts["medium"] != 2 || stats.RiskLevelCounts["high"] != 1 {
		t.Errorf("risk level counts = %v", stats.RiskLevelCounts)
	}
	if stats.LastProcessed != "2024-05-01T10:32:00Z" {
		t.Errorf("last processed = %q", stats.LastProcessed)
	}
}

func TestEmptyJournal(t *testing.T) {
	j := newJournal(t, journal.Config{})

	if got := j.Recent(10); len(got) != 0 {
		t.Errorf("recent on empty journal = %v", got)
	}

	stats := j.Stats()
	if stats.TotalEvents != 0 || stats.LastProcessed != "" {
		t.Errorf("stats on empty journal = %+v", stats)
	}
}
