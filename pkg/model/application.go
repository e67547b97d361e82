package model

import "time"

type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "Draft"
	StatusSubmitted   ApplicationStatus = "Submitted"
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusApproved    ApplicationStatus = "Approved"
	StatusDenied      ApplicationStatus = "Denied"
	StatusWithdrawn   ApplicationStatus = "Withdrawn"
)

func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		StatusDraft,
		StatusSubmitted,
		StatusUnderReview,
		StatusApproved,
		StatusDenied,
		StatusWithdrawn,
	}
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusDenied, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// Pending reports whether the application is still awaiting a decision.
func (s ApplicationStatus) Pending() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview:
		return true
	default:
		return false
	}
}

// Application is a funding request tying one project to one funding source.
// AwardedAmount is accepted regardless of status; see DESIGN.md.
type Application struct {
	ID               uint              `gorm:"primaryKey"`
	ProjectID        uint              `gorm:"not null;index"`
	Project          *Project          `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	FundingSourceID  uint              `gorm:"not null;index"`
	FundingSource    *FundingSource    `gorm:"foreignKey:FundingSourceID"`
	Status           ApplicationStatus `gorm:"type:varchar(50);default:'Draft';index"`
	ApplicationRound string            `gorm:"size:100"` // e.g. "2023-5"
	RequestedAmount  *float64
	AwardedAmount    *float64
	SubmissionDate   *time.Time `gorm:"type:date"`
	DecisionDate     *time.Time `gorm:"type:date"`
	Notes            string     `gorm:"type:text"`
	DocumentsFolder  string     `gorm:"size:500"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
