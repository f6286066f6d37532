package models

import (
	"time"

	"github.com/google/uuid"
)

type CreditCard struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	HolderName      string    `gorm:"size:255;not null" json:"holder_name"`
	Brand           string    `gorm:"size:30" json:"brand"`
	Last4           string    `gorm:"size:4;not null" json:"last4"`
	ExpirationMonth int       `gorm:"not null" json:"expiration_month"`
	ExpirationYear  int       `gorm:"not null" json:"expiration_year"`
	GatewayToken    string    `gorm:"size:255;not null" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}
