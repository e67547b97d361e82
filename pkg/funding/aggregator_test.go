package funding

import (
	"testing"
	"time"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

func f64(v float64) *float64 { return &v }

func TestComputeTotalsAndGap(t *testing.T) {
	apps := []model.Application{
		{RequestedAmount: f64(500000), AwardedAmount: f64(400000)},
		{RequestedAmount: f64(250000)},
		{AwardedAmount: f64(100000)},
	}

	result := Compute(f64(1000000), apps)

	if result.TotalAwarded != 500000 {
		t.Fatalf("expected awarded 500000, got %v", result.TotalAwarded)
	}
	if result.TotalRequested != 750000 {
		t.Fatalf("expected requested 750000, got %v", result.TotalRequested)
	}
	if result.Gap != 500000 {
		t.Fatalf("expected gap 500000, got %v", result.Gap)
	}
	if result.GapPercentage != 50 {
		t.Fatalf("expected gap percentage 50, got %v", result.GapPercentage)
	}
}

func TestComputeNegativeGapWhenOverFunded(t *testing.T) {
	apps := []model.Application{
		{AwardedAmount: f64(1200000)},
	}

	result := Compute(f64(1000000), apps)

	if result.Gap != -200000 {
		t.Fatalf("expected gap -200000, got %v", result.Gap)
	}
}

func TestComputeUnsetCost(t *testing.T) {
	apps := []model.Application{
		{AwardedAmount: f64(300000)},
	}

	result := Compute(nil, apps)

	if result.Gap != -300000 {
		t.Fatalf("expected gap -300000, got %v", result.Gap)
	}
	if result.GapPercentage != 0 {
		t.Fatalf("expected zero gap percentage with unset cost, got %v", result.GapPercentage)
	}
}

func TestSummarizePortfolioSeedsEveryPhase(t *testing.T) {
	projects := []model.Project{
		{ID: 1, Phase: model.PhaseConstruction, TotalCost: f64(2000000)},
		{ID: 2, Phase: model.PhaseConstruction, TotalCost: f64(1000000)},
	}
	appsByProject := map[uint][]model.Application{
		1: {{AwardedAmount: f64(500000), RequestedAmount: f64(800000)}},
	}

	summary := SummarizePortfolio(projects, appsByProject)

	if summary.TotalProjects != 2 {
		t.Fatalf("expected 2 projects, got %d", summary.TotalProjects)
	}
	if len(summary.PhaseDistribution) != 4 {
		t.Fatalf("expected all 4 phases in distribution, got %d", len(summary.PhaseDistribution))
	}
	if summary.PhaseDistribution[model.PhaseConstruction] != 2 {
		t.Fatalf("expected 2 construction projects, got %d", summary.PhaseDistribution[model.PhaseConstruction])
	}
	if summary.PhaseDistribution[model.PhasePreDevelopment] != 0 {
		t.Fatalf("expected zero pre-development projects, got %d", summary.PhaseDistribution[model.PhasePreDevelopment])
	}
	if summary.TotalCost != 3000000 {
		t.Fatalf("expected total cost 3000000, got %v", summary.TotalCost)
	}
	if summary.TotalSecured != 500000 {
		t.Fatalf("expected secured 500000, got %v", summary.TotalSecured)
	}
	if summary.TotalGap != 2500000 {
		t.Fatalf("expected gap 2500000, got %v", summary.TotalGap)
	}
}

func TestSummarizeApplicationsSuccessRate(t *testing.T) {
	now := time.Now().UTC()
	apps := []model.Application{
		{Status: model.StatusApproved, AwardedAmount: f64(300000), CreatedAt: now},
		{Status: model.StatusDenied, RequestedAmount: f64(200000), CreatedAt: now.Add(-60 * 24 * time.Hour)},
		{Status: model.StatusSubmitted, RequestedAmount: f64(100000), CreatedAt: now},
	}

	stats := SummarizeApplications(apps, now.Add(-30*24*time.Hour))

	if stats.TotalApplications != 3 {
		t.Fatalf("expected 3 applications, got %d", stats.TotalApplications)
	}
	if stats.RecentApplications != 2 {
		t.Fatalf("expected 2 recent applications, got %d", stats.RecentApplications)
	}
	if stats.StatusDistribution[model.StatusApproved] != 1 {
		t.Fatalf("expected 1 approved, got %d", stats.StatusDistribution[model.StatusApproved])
	}
	if stats.StatusDistribution[model.StatusWithdrawn] != 0 {
		t.Fatalf("expected zero withdrawn seeded, got %d", stats.StatusDistribution[model.StatusWithdrawn])
	}
	if stats.TotalRequested != 300000 {
		t.Fatalf("expected requested 300000, got %v", stats.TotalRequested)
	}
	if stats.TotalAwarded != 300000 {
		t.Fatalf("expected awarded 300000, got %v", stats.TotalAwarded)
	}
	// 1 of 3 approved = 33.333... rounded to one decimal.
	if stats.SuccessRate != 33.3 {
		t.Fatalf("expected success rate 33.3, got %v", stats.SuccessRate)
	}
}

func TestSummarizeApplicationsEmpty(t *testing.T) {
	stats := SummarizeApplications(nil, time.Now())

	if stats.SuccessRate != 0 {
		t.Fatalf("expected zero success rate for empty portfolio, got %v", stats.SuccessRate)
	}
	if stats.TotalApplications != 0 {
		t.Fatalf("expected zero applications, got %d", stats.TotalApplications)
	}
	if len(stats.StatusDistribution) != 6 {
		t.Fatalf("expected all 6 statuses seeded, got %d", len(stats.StatusDistribution))
	}
}
