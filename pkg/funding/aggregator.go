// Package funding computes funding-gap aggregates and funding source
// recommendations. Everything here is pure: callers load records through the
// store and pass them in.
package funding

import (
	"math"
	"time"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// ProjectFunding is the per-project funding picture derived from a project's
// applications.
type ProjectFunding struct {
	TotalAwarded   float64
	TotalRequested float64
	Gap            float64
	GapPercentage  float64
}

// Compute derives the funding totals for one project. Missing amounts count
// as zero, an unset total cost counts as zero, and the gap may go negative
// when a project is over-funded.
func Compute(totalCost *float64, apps []model.Application) ProjectFunding {
	var f ProjectFunding
	for i := range apps {
		if apps[i].AwardedAmount != nil {
			f.TotalAwarded += *apps[i].AwardedAmount
		}
		if apps[i].RequestedAmount != nil {
			f.TotalRequested += *apps[i].RequestedAmount
		}
	}

	cost := 0.0
	if totalCost != nil {
		cost = *totalCost
	}
	f.Gap = cost - f.TotalAwarded
	if cost > 0 {
		f.GapPercentage = f.Gap / cost * 100
	}
	return f
}

// PortfolioSummary is the dashboard rollup across every project.
type PortfolioSummary struct {
	TotalProjects     int
	PhaseDistribution map[model.ProjectPhase]int
	TotalCost         float64
	TotalSecured      float64
	TotalRequested    float64
	TotalGap          float64
}

// SummarizePortfolio buckets projects by phase and sums cost, secured and
// requested funding across the portfolio. Every phase appears in the
// distribution, zero counts included.
func SummarizePortfolio(projects []model.Project, appsByProject map[uint][]model.Application) PortfolioSummary {
	summary := PortfolioSummary{
		TotalProjects:     len(projects),
		PhaseDistribution: make(map[model.ProjectPhase]int, 4),
	}
	for _, phase := range model.ProjectPhases() {
		summary.PhaseDistribution[phase] = 0
	}

	for i := range projects {
		p := &projects[i]
		summary.PhaseDistribution[p.Phase]++
		f := Compute(p.TotalCost, appsByProject[p.ID])
		if p.TotalCost != nil {
			summary.TotalCost += *p.TotalCost
		}
		summary.TotalSecured += f.TotalAwarded
		summary.TotalRequested += f.TotalRequested
	}
	summary.TotalGap = summary.TotalCost - summary.TotalSecured
	return summary
}

// ApplicationStats is the application dashboard rollup.
type ApplicationStats struct {
	StatusDistribution map[model.ApplicationStatus]int
	RecentApplications int
	TotalRequested     float64
	TotalAwarded       float64
	SuccessRate        float64
	TotalApplications  int
}

// SummarizeApplications buckets applications by status and computes the
// approval success rate, rounded to one decimal. A portfolio with no
// applications reports a zero rate rather than dividing by zero.
func SummarizeApplications(apps []model.Application, recentSince time.Time) ApplicationStats {
	stats := ApplicationStats{
		StatusDistribution: make(map[model.ApplicationStatus]int, 6),
		TotalApplications:  len(apps),
	}
	for _, status := range model.ApplicationStatuses() {
		stats.StatusDistribution[status] = 0
	}

	approved := 0
	for i := range apps {
		a := &apps[i]
		stats.StatusDistribution[a.Status]++
		if a.Status == model.StatusApproved {
			approved++
		}
		if a.CreatedAt.After(recentSince) {
			stats.RecentApplications++
		}
		if a.RequestedAmount != nil {
			stats.TotalRequested += *a.RequestedAmount
		}
		if a.AwardedAmount != nil {
			stats.TotalAwarded += *a.AwardedAmount
		}
	}

	if len(apps) > 0 {
		rate := float64(approved) / float64(len(apps)) * 100
		stats.SuccessRate = math.Round(rate*10) / 10
	}
	return stats
}
