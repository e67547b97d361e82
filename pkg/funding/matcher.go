package funding

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// Recommendation is a scored funding source candidate for a project.
type Recommendation struct {
	Source  model.FundingSource
	Score   int
	Reasons []string
}

const maxRecommendations = 5

// Rule scores. The table is fixed and additive; keeping the scorer
// deterministic keeps recommendations reproducible.
const (
	scoreUnitFit         = 30
	scorePopulationFit   = 25
	scoreConstructionFit = 20
	scoreAmountFit       = 25

	minLIHTC9Units = 20
)

// Match scores the given funding sources against a project and its current
// funding gap. Callers pass only active sources the project has not already
// applied to. Sources scoring zero are dropped; the rest come back sorted by
// score descending (ties keep input order), capped at five.
func Match(project *model.Project, gap float64, sources []model.FundingSource) []Recommendation {
	var recs []Recommendation

	for i := range sources {
		source := sources[i]
		score := 0
		var reasons []string

		if source.Type == model.SourceLIHTC9 && project.TotalUnits != nil && *project.TotalUnits >= minLIHTC9Units {
			score += scoreUnitFit
			reasons = append(reasons, "Good fit for 9% LIHTC with sufficient unit count")
		}

		if source.Type == model.SourceFHLBAHP && project.PopulationType == "Family" {
			score += scorePopulationFit
			reasons = append(reasons, "FHLB AHP supports family housing development")
		}

		if source.Type == model.SourceHOME &&
			(project.ProjectType == "New Construction" || project.ProjectType == "Rehabilitation") {
			score += scoreConstructionFit
			reasons = append(reasons, "HOME funds support new construction and rehabilitation")
		}

		if source.HasAwardRange() && *source.AwardAmountMin <= gap && gap <= *source.AwardAmountMax {
			score += scoreAmountFit
			reasons = append(reasons, fmt.Sprintf(
				"Award range ($%s-$%s) matches funding gap",
				formatAmount(*source.AwardAmountMin), formatAmount(*source.AwardAmountMax),
			))
		}

		if score > 0 {
			recs = append(recs, Recommendation{Source: source, Score: score, Reasons: reasons})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// formatAmount renders a dollar amount with thousands separators and no
// cents, e.g. 500000 -> "500,000".
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	negative := false
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if negative {
		return "-" + s
	}
	return s
}
