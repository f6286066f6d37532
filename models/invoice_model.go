package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPending  = "pending"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusDeclined = "declined"
	InvoiceStatusExpired  = "expired"
)

type Invoice struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID      *uuid.UUID `gorm:"type:uuid;unique" json:"booking_id"`
	Amount         Money      `gorm:"not null" json:"amount"`
	Currency       string     `gorm:"size:3" json:"currency"`
	Description    string     `gorm:"size:255" json:"description"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsPaid         bool       `gorm:"not null;default:false" json:"is_paid"`
	FailureReasons string     `gorm:"type:text" json:"failure_reasons,omitempty"`
	GatewayTxnID   *string    `gorm:"size:255;unique" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
