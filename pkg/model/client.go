package model

import "time"

// Client is a development partner organization. Clients are referenced by
// projects, never cascaded on delete.
type Client struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:200;not null"`
	Organization  string `gorm:"size:200"`
	Email         string `gorm:"size:200"`
	Phone         string `gorm:"size:50"`
	Address       string `gorm:"size:300"`
	City          string `gorm:"size:100"`
	State         string `gorm:"size:50"`
	ZipCode       string `gorm:"size:20"`
	ContactPerson string `gorm:"size:200"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
