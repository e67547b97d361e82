package model

import "testing"

func TestProjectPhaseValid(t *testing.T) {
	for _, phase := range ProjectPhases() {
		if !phase.Valid() {
			t.Fatalf("expected %q to be valid", phase)
		}
	}
	if ProjectPhase("Demolition").Valid() {
		t.Fatal("expected unknown phase to be invalid")
	}
	if ProjectPhase("").Valid() {
		t.Fatal("expected empty phase to be invalid")
	}
}

func TestFundingSourceTypeValid(t *testing.T) {
	for _, sourceType := range FundingSourceTypes() {
		if !sourceType.Valid() {
			t.Fatalf("expected %q to be valid", sourceType)
		}
	}
	if FundingSourceType("LIHTC 10%").Valid() {
		t.Fatal("expected unknown source type to be invalid")
	}
}

func TestApplicationStatusValidAndPending(t *testing.T) {
	for _, status := range ApplicationStatuses() {
		if !status.Valid() {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if ApplicationStatus("Pending").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}

	pending := []ApplicationStatus{StatusDraft, StatusSubmitted, StatusUnderReview}
	for _, status := range pending {
		if !status.Pending() {
			t.Fatalf("expected %q to be pending", status)
		}
	}
	decided := []ApplicationStatus{StatusApproved, StatusDenied, StatusWithdrawn}
	for _, status := range decided {
		if status.Pending() {
			t.Fatalf("expected %q to not be pending", status)
		}
	}
}

func TestTimeEntryAmount(t *testing.T) {
	entry := &TimeEntry{Hours: 8, HourlyRate: 125}
	if entry.Amount() != 1000 {
		t.Fatalf("expected amount 1000, got %v", entry.Amount())
	}
}

func TestProjectHasSite(t *testing.T) {
	project := &Project{}
	if project.HasSite() {
		t.Fatal("expected no site")
	}
	project.SharePointSiteURL = "https://contoso.sharepoint.com/sites/test"
	if !project.HasSite() {
		t.Fatal("expected site")
	}
}

func TestFundingSourceHasAwardRange(t *testing.T) {
	min, max := 100000.0, 500000.0
	source := &FundingSource{AwardAmountMin: &min}
	if source.HasAwardRange() {
		t.Fatal("expected incomplete range to report false")
	}
	source.AwardAmountMax = &max
	if !source.HasAwardRange() {
		t.Fatal("expected complete range to report true")
	}
}
