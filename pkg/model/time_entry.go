package model

import "time"

// DefaultHourlyRate applies when a time entry is created without a rate.
const DefaultHourlyRate = 125.0

type TimeEntry struct {
	ID          uint      `gorm:"primaryKey"`
	ProjectID   *uint     `gorm:"index"`
	Project     *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	UserName    string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text;not null"`
	Hours       float64   `gorm:"not null"`
	HourlyRate  float64   `gorm:"default:125.0"`
	Date        time.Time `gorm:"type:date;not null;index"`
	IsBillable  bool      `gorm:"default:true"`
	IsInvoiced  bool      `gorm:"default:false"`
	CreatedAt   time.Time
}

// Amount is the billed value of the entry. It is always derived, never stored.
func (e *TimeEntry) Amount() float64 {
	return e.Hours * e.HourlyRate
}
