package models

import "time"

type Cruise struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ShipName      string    `gorm:"size:255;not null" json:"ship_name"`
	Company       string    `gorm:"size:255" json:"company"`
	ArrivalDate   time.Time `json:"arrival_date"`
	DepartureDate time.Time `json:"departure_date"`
}
