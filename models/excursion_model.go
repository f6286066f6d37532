package models

import (
	"time"

	"gorm.io/gorm"
)

type ExcursionType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;unique" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"image_url"`
	Position    int    `gorm:"default:0" json:"position"`
}

type Excursion struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ExcursionTypeID uint          `gorm:"not null;index" json:"excursion_type_id"`
	Date            time.Time     `gorm:"not null;index" json:"date"`
	StartTime       string        `gorm:"size:5;not null" json:"start_time"`
	AdultPrice      Money         `gorm:"not null" json:"adult_price"`
	KidPrice        Money         `gorm:"not null" json:"kid_price"`
	Capacity        int           `gorm:"not null;default:0" json:"capacity"`
	ExcursionType   ExcursionType `gorm:"foreignKey:ExcursionTypeID" json:"excursion_type,omitempty"`
	Cruises         []Cruise      `gorm:"many2many:excursion_cruises;" json:"cruises,omitempty"`
}

// StringDateTime is the date and start time as shown to visitors.
func (e Excursion) StringDateTime() string {
	date := e.Date.Format("January 2, 2006")
	if e.StartTime == "" {
		return date
	}
	return date + " at " + e.StartTime
}

// BeforeSave keeps only the calendar date, pinned to UTC midnight, so day
// lookups do not depend on the writer's time zone.
func (e *Excursion) BeforeSave(tx *gorm.DB) error {
	e.Date = CalendarDate(e.Date)
	return nil
}

// CalendarDate is t's year, month and day at UTC midnight.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
