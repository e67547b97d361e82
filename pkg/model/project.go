package model

import "time"

type ProjectPhase string

const (
	PhasePreDevelopment       ProjectPhase = "Pre-Development"
	PhaseApplicationFinancing ProjectPhase = "Application/Financing"
	PhaseConstruction         ProjectPhase = "Construction"
	PhaseLeaseUpCompliance    ProjectPhase = "Lease-Up/Compliance"
)

// ProjectPhases lists every phase in pipeline order. Dashboard bucketing
// iterates this so each phase shows up even with a zero count.
func ProjectPhases() []ProjectPhase {
	return []ProjectPhase{
		PhasePreDevelopment,
		PhaseApplicationFinancing,
		PhaseConstruction,
		PhaseLeaseUpCompliance,
	}
}

func (p ProjectPhase) Valid() bool {
	switch p {
	case PhasePreDevelopment, PhaseApplicationFinancing, PhaseConstruction, PhaseLeaseUpCompliance:
		return true
	default:
		return false
	}
}

// Project is the aggregation root for funding-gap and billing computations.
// Applications and time entries reference it by id and are resolved through
// the repositories rather than embedded here.
type Project struct {
	ID                uint         `gorm:"primaryKey"`
	Name              string       `gorm:"size:200;not null"`
	Address           string       `gorm:"size:300"`
	City              string       `gorm:"size:100"`
	State             string       `gorm:"size:50"`
	ZipCode           string       `gorm:"size:20"`
	Phase             ProjectPhase `gorm:"type:varchar(50);default:'Pre-Development';index"`
	ProjectType       string       `gorm:"size:100"` // New Construction, Rehabilitation, ...
	PopulationType    string       `gorm:"size:100"` // Family, Senior, ...
	HousingType       string       `gorm:"size:100"` // Multifamily, Single-family
	TotalUnits        *int
	TotalCost         *float64
	ClientID          uint    `gorm:"not null;index"`
	Client            *Client `gorm:"foreignKey:ClientID"`
	SharePointSiteURL string  `gorm:"column:sharepoint_site_url;size:500"`
	SharePointEmail   string  `gorm:"column:sharepoint_email;size:200"`
	SharePointGroupID string  `gorm:"column:sharepoint_group_id;size:100"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasSite reports whether a collaboration site has already been provisioned.
// Create-site uses this as its idempotency guard.
func (p *Project) HasSite() bool {
	return p.SharePointSiteURL != ""
}
