package models

import "time"

type ExperienceVideo struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	VideoURL  string    `gorm:"size:255;not null" json:"video_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ExperienceGallery struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Caption   string    `gorm:"size:255" json:"caption"`
	ImageURL  string    `gorm:"size:255;not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}
