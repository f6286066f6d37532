package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Reference       string    `gorm:"size:12;not null;unique" json:"reference"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExcursionTypeID uint      `gorm:"not null" json:"excursion_type_id"`
	ExcursionID     uint      `gorm:"not null;index" json:"excursion_id"`
	Date            time.Time `gorm:"not null" json:"date"`
	Adults          int       `gorm:"not null;default:0" json:"adults"`
	Kids            int       `gorm:"not null;default:0" json:"kids"`
	TotalPrice      Money     `gorm:"not null" json:"total_price"`
	IsPartner       bool      `gorm:"not null;default:false" json:"is_partner"`
	ReceiptURL      *string   `gorm:"size:255" json:"receipt_url,omitempty"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Excursion Excursion `gorm:"foreignKey:ExcursionID" json:"excursion,omitempty"`
	Cruises   []Cruise  `gorm:"many2many:booking_cruises;" json:"cruises,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
