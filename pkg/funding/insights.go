package funding

import (
	"fmt"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// Insight is a rule-derived observation about a project's funding position.
type Insight struct {
	Type    string // warning, info, success
	Title   string
	Message string
}

// Insights derives gap, pending-application and phase observations for a
// project from its computed funding picture.
func Insights(project *model.Project, f ProjectFunding, apps []model.Application) []Insight {
	var insights []Insight

	if f.Gap > 0 {
		switch {
		case f.GapPercentage > 50:
			insights = append(insights, Insight{
				Type:  "warning",
				Title: "Significant Funding Gap",
				Message: fmt.Sprintf(
					"Project has a $%s funding gap (%.1f%% of total cost). Consider additional funding sources.",
					formatAmount(f.Gap), f.GapPercentage,
				),
			})
		case f.GapPercentage > 20:
			insights = append(insights, Insight{
				Type:  "info",
				Title: "Moderate Funding Gap",
				Message: fmt.Sprintf(
					"Project has a $%s funding gap. Monitor for additional funding opportunities.",
					formatAmount(f.Gap),
				),
			})
		}
	} else {
		insights = append(insights, Insight{
			Type:    "success",
			Title:   "Fully Funded",
			Message: "Project funding is complete or oversubscribed.",
		})
	}

	pending := 0
	pendingAmount := 0.0
	for i := range apps {
		if apps[i].Status.Pending() {
			pending++
			if apps[i].RequestedAmount != nil {
				pendingAmount += *apps[i].RequestedAmount
			}
		}
	}
	if pending > 0 {
		insights = append(insights, Insight{
			Type:  "info",
			Title: "Pending Applications",
			Message: fmt.Sprintf(
				"%d funding applications are still pending. Total pending amount: $%s",
				pending, formatAmount(pendingAmount),
			),
		})
	}

	switch project.Phase {
	case model.PhasePreDevelopment:
		insights = append(insights, Insight{
			Type:    "info",
			Title:   "Pre-Development Phase",
			Message: "Focus on site control, environmental reviews, and preliminary design. Consider PDLP funding for predevelopment costs.",
		})
	case model.PhaseApplicationFinancing:
		insights = append(insights, Insight{
			Type:    "info",
			Title:   "Financing Phase",
			Message: "Active funding application period. Monitor deadlines and ensure all documentation is complete.",
		})
	}

	return insights
}
