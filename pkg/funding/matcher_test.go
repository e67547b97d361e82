package funding

import (
	"testing"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

func intp(v int) *int { return &v }

func TestMatchScoresAndOrdering(t *testing.T) {
	project := &model.Project{
		Name:           "Cedar Commons",
		TotalUnits:     intp(25),
		PopulationType: "Family",
		ProjectType:    "New Construction",
	}
	sources := []model.FundingSource{
		{ID: 1, Name: "State HOME Funds", Type: model.SourceHOME},
		{ID: 2, Name: "9% Credits", Type: model.SourceLIHTC9},
		{ID: 3, Name: "AHP Grant", Type: model.SourceFHLBAHP},
		{ID: 4, Name: "Inactive Fit", Type: model.SourceORCA},
	}

	recs := Match(project, 400000, sources)

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	// LIHTC 9% (30) beats AHP (25) beats HOME (20); ORCA scored zero.
	if recs[0].Source.ID != 2 || recs[0].Score != 30 {
		t.Fatalf("expected LIHTC 9%% first with score 30, got id %d score %d", recs[0].Source.ID, recs[0].Score)
	}
	if recs[1].Source.ID != 3 || recs[1].Score != 25 {
		t.Fatalf("expected FHLB AHP second with score 25, got id %d score %d", recs[1].Source.ID, recs[1].Score)
	}
	if recs[2].Source.ID != 1 || recs[2].Score != 20 {
		t.Fatalf("expected HOME third with score 20, got id %d score %d", recs[2].Source.ID, recs[2].Score)
	}
	if recs[0].Reasons[0] != "Good fit for 9% LIHTC with sufficient unit count" {
		t.Fatalf("unexpected reason: %q", recs[0].Reasons[0])
	}
}

func TestMatchUnitThreshold(t *testing.T) {
	project := &model.Project{TotalUnits: intp(19)}
	sources := []model.FundingSource{
		{ID: 1, Type: model.SourceLIHTC9},
	}

	if recs := Match(project, 0, sources); len(recs) != 0 {
		t.Fatalf("expected no recommendations below unit threshold, got %d", len(recs))
	}
}

func TestMatchAwardRangeFit(t *testing.T) {
	project := &model.Project{}
	sources := []model.FundingSource{
		{ID: 1, Type: model.SourceORCA, AwardAmountMin: f64(250000), AwardAmountMax: f64(750000)},
		{ID: 2, Type: model.SourceORCA, AwardAmountMin: f64(800000), AwardAmountMax: f64(900000)},
		{ID: 3, Type: model.SourceORCA, AwardAmountMin: f64(250000)},
	}

	recs := Match(project, 500000, sources)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Source.ID != 1 || recs[0].Score != 25 {
		t.Fatalf("expected source 1 with score 25, got id %d score %d", recs[0].Source.ID, recs[0].Score)
	}
	if recs[0].Reasons[0] != "Award range ($250,000-$750,000) matches funding gap" {
		t.Fatalf("unexpected reason: %q", recs[0].Reasons[0])
	}
}

func TestMatchCapsAtFive(t *testing.T) {
	project := &model.Project{}
	var sources []model.FundingSource
	for i := 0; i < 8; i++ {
		sources = append(sources, model.FundingSource{
			ID:             uint(i + 1),
			Type:           model.SourceORCA,
			AwardAmountMin: f64(0),
			AwardAmountMax: f64(1000000),
		})
	}

	recs := Match(project, 500000, sources)

	if len(recs) != 5 {
		t.Fatalf("expected cap of 5 recommendations, got %d", len(recs))
	}
	// Equal scores keep input order.
	if recs[0].Source.ID != 1 {
		t.Fatalf("expected stable ordering, got first id %d", recs[0].Source.ID)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		500000:   "500,000",
		1250000:  "1,250,000",
		-1250000: "-1,250,000",
	}
	for input, want := range cases {
		if got := formatAmount(input); got != want {
			t.Fatalf("formatAmount(%v) = %q, want %q", input, got, want)
		}
	}
}
