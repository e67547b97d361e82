package funding

import (
	"testing"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

func findInsight(insights []Insight, title string) *Insight {
	for i := range insights {
		if insights[i].Title == title {
			return &insights[i]
		}
	}
	return nil
}

func TestInsightsSignificantGap(t *testing.T) {
	project := &model.Project{Phase: model.PhaseConstruction}
	f := ProjectFunding{Gap: 600000, GapPercentage: 60}

	insights := Insights(project, f, nil)

	insight := findInsight(insights, "Significant Funding Gap")
	if insight == nil {
		t.Fatalf("expected significant gap insight, got %+v", insights)
	}
	if insight.Type != "warning" {
		t.Fatalf("expected warning type, got %q", insight.Type)
	}
}

func TestInsightsModerateGap(t *testing.T) {
	project := &model.Project{Phase: model.PhaseConstruction}
	f := ProjectFunding{Gap: 300000, GapPercentage: 30}

	insights := Insights(project, f, nil)

	insight := findInsight(insights, "Moderate Funding Gap")
	if insight == nil {
		t.Fatalf("expected moderate gap insight, got %+v", insights)
	}
	if insight.Type != "info" {
		t.Fatalf("expected info type, got %q", insight.Type)
	}
}

func TestInsightsFullyFunded(t *testing.T) {
	project := &model.Project{Phase: model.PhaseLeaseUpCompliance}
	f := ProjectFunding{Gap: -50000}

	insights := Insights(project, f, nil)

	if findInsight(insights, "Fully Funded") == nil {
		t.Fatalf("expected fully funded insight, got %+v", insights)
	}
}

func TestInsightsPendingApplicationsAndPhase(t *testing.T) {
	project := &model.Project{Phase: model.PhasePreDevelopment}
	apps := []model.Application{
		{Status: model.StatusSubmitted, RequestedAmount: f64(200000)},
		{Status: model.StatusUnderReview, RequestedAmount: f64(300000)},
		{Status: model.StatusDenied, RequestedAmount: f64(100000)},
	}

	insights := Insights(project, ProjectFunding{Gap: -1}, apps)

	pending := findInsight(insights, "Pending Applications")
	if pending == nil {
		t.Fatalf("expected pending applications insight, got %+v", insights)
	}
	want := "2 funding applications are still pending. Total pending amount: $500,000"
	if pending.Message != want {
		t.Fatalf("expected %q, got %q", want, pending.Message)
	}

	if findInsight(insights, "Pre-Development Phase") == nil {
		t.Fatalf("expected pre-development phase insight, got %+v", insights)
	}
}
