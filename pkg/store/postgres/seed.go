package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// Seed loads the sample portfolio into an empty database: two clients, the
// Oregon funding source catalog, the Dallas Mill Station project with its
// applications and time entries, and a second project in pre-development.
// Running it against a database that already holds projects is a no-op.
func (s *Store) Seed(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error; err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		return nil
	}

	clients := []model.Client{
		{
			Name:          "Polk County Community Development Corporation",
			Organization:  "Polk CDC",
			Email:         "info@polkcdc.org",
			Phone:         "(503) 623-8173",
			Address:       "1275 Lancaster Dr NE",
			City:          "Salem",
			State:         "Oregon",
			ZipCode:       "97301",
			ContactPerson: "Rita Bernardo",
		},
		{
			Name:          "Geller, Silvis & Associates Inc.",
			Organization:  "GS&A",
			Email:         "info@gsaconsulting.com",
			Phone:         "(503) 555-0123",
			Address:       "123 Main St",
			City:          "Portland",
			State:         "Oregon",
			ZipCode:       "97201",
			ContactPerson: "Diana Marenco",
		},
	}
	if err := s.db.WithContext(ctx).Create(&clients).Error; err != nil {
		return fmt.Errorf("seed clients: %w", err)
	}

	sources := []model.FundingSource{
		{
			Name:           "9% Low-Income Housing Tax Credit",
			Type:           model.SourceLIHTC9,
			Agency:         "Oregon Housing and Community Services (OHCS)",
			Description:    "Competitive 9% LIHTC program for affordable housing development",
			AwardAmountMin: fptr(500000),
			AwardAmountMax: fptr(5000000),
			Requirements:   "New construction or substantial rehabilitation, minimum 30-year compliance period",
			WebsiteURL:     "https://www.oregon.gov/ohcs/development/Pages/LIHTC.aspx",
			IsActive:       true,
		},
		{
			Name:           "Federal Home Loan Bank AHP",
			Type:           model.SourceFHLBAHP,
			Agency:         "Federal Home Loan Bank of Des Moines",
			Description:    "Affordable Housing Program providing grants and subsidized loans",
			AwardAmountMin: fptr(100000),
			AwardAmountMax: fptr(2000000),
			Requirements:   "Affordable housing for households at or below 80% AMI",
			WebsiteURL:     "https://www.fhlbdm.com/community-investment/ahp",
			IsActive:       true,
		},
		{
			Name:           "ORCA Predevelopment Loan Program",
			Type:           model.SourceORCA,
			Agency:         "Oregon Residential and Community Action",
			Description:    "Predevelopment loans for affordable housing projects",
			AwardAmountMin: fptr(50000),
			AwardAmountMax: fptr(500000),
			Requirements:   "Predevelopment activities for affordable housing",
			WebsiteURL:     "https://orcaonline.org/",
			IsActive:       true,
		},
		{
			Name:           "HOME Investment Partnerships Program",
			Type:           model.SourceHOME,
			Agency:         "Oregon Housing and Community Services (OHCS)",
			Description:    "Federal HOME funds for affordable housing development",
			AwardAmountMin: fptr(200000),
			AwardAmountMax: fptr(1500000),
			Requirements:   "Affordable housing for households at or below 80% AMI",
			WebsiteURL:     "https://www.oregon.gov/ohcs/development/Pages/HOME.aspx",
			IsActive:       true,
		},
		{
			Name:           "Predevelopment Loan Program",
			Type:           model.SourcePDLP,
			Agency:         "Oregon Housing and Community Services (OHCS)",
			Description:    "PDLP provides predevelopment loans for affordable housing",
			AwardAmountMin: fptr(25000),
			AwardAmountMax: fptr(300000),
			Requirements:   "Predevelopment activities, must lead to permanent financing",
			WebsiteURL:     "https://www.oregon.gov/ohcs/development/Pages/PDLP.aspx",
			IsActive:       true,
		},
		{
			Name:           "Congressional Community Project Funding",
			Type:           model.SourceCongressionalCIP,
			Agency:         "U.S. Congress - Oregon Delegation",
			Description:    "Federal appropriations through congressional representatives",
			AwardAmountMin: fptr(500000),
			AwardAmountMax: fptr(5000000),
			Requirements:   "Community benefit, local support, detailed budget justification",
			WebsiteURL:     "https://www.wyden.senate.gov/",
			IsActive:       true,
		},
	}
	if err := s.db.WithContext(ctx).Create(&sources).Error; err != nil {
		return fmt.Errorf("seed funding sources: %w", err)
	}

	projects := []model.Project{
		{
			Name:              "Dallas Mill Station",
			Address:           "179 & 188 SW Washington Street",
			City:              "Dallas",
			State:             "Oregon",
			ZipCode:           "97338",
			Phase:             model.PhaseApplicationFinancing,
			ProjectType:       "New Construction",
			PopulationType:    "Family",
			HousingType:       "Multifamily",
			TotalUnits:        iptr(63),
			TotalCost:         fptr(25000000),
			ClientID:          clients[0].ID,
			SharePointSiteURL: "https://polkcdc.sharepoint.com/sites/DallasMillStation",
			SharePointEmail:   "dallasmill@polkcdc.org",
		},
		{
			Name:              "Riverside Commons",
			Address:           "456 River Road",
			City:              "Salem",
			State:             "Oregon",
			ZipCode:           "97301",
			Phase:             model.PhasePreDevelopment,
			ProjectType:       "Rehabilitation",
			PopulationType:    "Senior",
			HousingType:       "Multifamily",
			TotalUnits:        iptr(48),
			TotalCost:         fptr(18000000),
			ClientID:          clients[0].ID,
			SharePointSiteURL: "https://polkcdc.sharepoint.com/sites/RiversideCommons",
			SharePointEmail:   "riverside@polkcdc.org",
		},
	}
	if err := s.db.WithContext(ctx).Create(&projects).Error; err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}

	dallasMill := projects[0].ID
	applications := []model.Application{
		{
			ProjectID:        dallasMill,
			FundingSourceID:  sources[0].ID,
			Status:           model.StatusSubmitted,
			ApplicationRound: "2023-5",
			RequestedAmount:  fptr(2750000),
			SubmissionDate:   dptr(day(2023, time.May, 1)),
			Notes:            "Primary funding source - 9% LIHTC competitive application",
			DocumentsFolder:  "/sites/DallasMillStation/2023-5 LIHTC application",
		},
		{
			ProjectID:        dallasMill,
			FundingSourceID:  sources[1].ID,
			Status:           model.StatusApproved,
			ApplicationRound: "2025",
			RequestedAmount:  fptr(1200000),
			AwardedAmount:    fptr(1200000),
			SubmissionDate:   dptr(day(2025, time.April, 15)),
			DecisionDate:     dptr(day(2025, time.June, 1)),
			Notes:            "FHLB AHP funding approved - $1.2M award",
			DocumentsFolder:  "/sites/DallasMillStation/FHLB AHP 2025",
		},
		{
			ProjectID:        dallasMill,
			FundingSourceID:  sources[4].ID,
			Status:           model.StatusApproved,
			ApplicationRound: "2024",
			RequestedAmount:  fptr(150000),
			AwardedAmount:    fptr(150000),
			SubmissionDate:   dptr(day(2024, time.January, 15)),
			DecisionDate:     dptr(day(2024, time.February, 28)),
			Notes:            "PDLP funding executed - predevelopment loan secured",
			DocumentsFolder:  "/sites/DallasMillStation/PDLP 2024",
		},
		{
			ProjectID:        dallasMill,
			FundingSourceID:  sources[5].ID,
			Status:           model.StatusUnderReview,
			ApplicationRound: "FY2026",
			RequestedAmount:  fptr(3000000),
			SubmissionDate:   dptr(day(2025, time.February, 23)),
			Notes:            "Congressional appropriation request through Oregon delegation",
			DocumentsFolder:  "/sites/DallasMillStation/CIP Congressional Funding",
		},
	}
	if err := s.db.WithContext(ctx).Create(&applications).Error; err != nil {
		return fmt.Errorf("seed applications: %w", err)
	}

	entries := []model.TimeEntry{
		{
			ProjectID:   &projects[0].ID,
			UserName:    "Diana Marenco",
			Description: "LIHTC application development and review",
			Hours:       8.5,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        day(2025, time.June, 20),
			IsBillable:  true,
		},
		{
			ProjectID:   &projects[0].ID,
			UserName:    "Diana Marenco",
			Description: "FHLB AHP application coordination and submission",
			Hours:       6.0,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        day(2025, time.June, 21),
			IsBillable:  true,
		},
		{
			ProjectID:   &projects[0].ID,
			UserName:    "Diana Marenco",
			Description: "Congressional funding documentation and stakeholder coordination",
			Hours:       4.5,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        day(2025, time.June, 22),
			IsBillable:  true,
		},
		{
			ProjectID:   &projects[1].ID,
			UserName:    "Diana Marenco",
			Description: "Pre-development planning and site analysis",
			Hours:       5.0,
			HourlyRate:  model.DefaultHourlyRate,
			Date:        day(2025, time.June, 23),
			IsBillable:  true,
		},
	}
	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("seed time entries: %w", err)
	}

	return nil
}

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }

func dptr(t time.Time) *time.Time { return &t }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
