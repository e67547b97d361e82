package model

import "time"

type FundingSourceType string

const (
	SourceLIHTC9           FundingSourceType = "LIHTC 9%"
	SourceLIHTC4           FundingSourceType = "LIHTC 4%"
	SourceFHLBAHP          FundingSourceType = "FHLB AHP"
	SourceORCA             FundingSourceType = "ORCA"
	SourceHOME             FundingSourceType = "HOME"
	SourcePDLP             FundingSourceType = "PDLP"
	SourceCongressionalCIP FundingSourceType = "Congressional/CIP"
)

func FundingSourceTypes() []FundingSourceType {
	return []FundingSourceType{
		SourceLIHTC9,
		SourceLIHTC4,
		SourceFHLBAHP,
		SourceORCA,
		SourceHOME,
		SourcePDLP,
		SourceCongressionalCIP,
	}
}

func (t FundingSourceType) Valid() bool {
	switch t {
	case SourceLIHTC9, SourceLIHTC4, SourceFHLBAHP, SourceORCA, SourceHOME, SourcePDLP, SourceCongressionalCIP:
		return true
	default:
		return false
	}
}

type FundingSource struct {
	ID                  uint              `gorm:"primaryKey"`
	Name                string            `gorm:"size:200;not null"`
	Type                FundingSourceType `gorm:"type:varchar(50);not null;index"`
	Agency              string            `gorm:"size:200"`
	Description         string            `gorm:"type:text"`
	ApplicationDeadline *time.Time        `gorm:"type:date"`
	AwardAmountMin      *float64
	AwardAmountMax      *float64
	Requirements        string `gorm:"type:text"`
	ContactInfo         string `gorm:"type:text"`
	WebsiteURL          string `gorm:"size:500"`
	IsActive            bool   `gorm:"default:true;index"`
	CreatedAt           time.Time
}

// HasAwardRange reports whether both award bounds are set, which is what the
// matcher's amount-fit rule requires.
func (s *FundingSource) HasAwardRange() bool {
	return s.AwardAmountMin != nil && s.AwardAmountMax != nil
}
