package models

import "time"

type Contact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Comment     string    `gorm:"type:text" json:"comment"`
	PhoneNumber string    `gorm:"size:50" json:"phone_number"`
	IP          string    `gorm:"size:64" json:"ip"`
	CreatedAt   time.Time `json:"created_at"`
}
