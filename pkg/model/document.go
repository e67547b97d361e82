package model

import (
	"time"

	"github.com/lib/pq"
)

// Document is a pass-through record of a file tracked against a project or
// application. The upload-document endpoint writes one per uploaded file.
type Document struct {
	ID            uint   `gorm:"primaryKey"`
	ProjectID     *uint  `gorm:"index"`
	ApplicationID *uint  `gorm:"index"`
	Name          string `gorm:"size:300;not null"`
	FilePath      string `gorm:"size:500;not null"`
	SharePointURL string `gorm:"column:sharepoint_url;size:500"`
	DocumentType  string `gorm:"size:100"` // Application, Contract, Report, ...
	Version       string `gorm:"size:50"`
	Status        string `gorm:"size:50"` // Draft, Final, Approved, ...
	UploadedBy    string `gorm:"size:200"`
	UploadDate    time.Time
}

// Email is a pass-through record of correspondence captured against a project.
type Email struct {
	ID                uint              `gorm:"primaryKey"`
	ProjectID         *uint             `gorm:"index"`
	Subject           string            `gorm:"size:500;not null"`
	Sender            string            `gorm:"size:200;not null"`
	Recipients        pq.StringArray    `gorm:"type:text[]"`
	Body              string            `gorm:"type:text"`
	ReceivedDate      time.Time         `gorm:"not null"`
	OutlookMessageID  string            `gorm:"size:500;uniqueIndex"`
	FundingSourceType FundingSourceType `gorm:"type:varchar(50)"`
	IsUrgent          bool              `gorm:"default:false"`
	IsProcessed       bool              `gorm:"default:false"`
	CreatedAt         time.Time
}
