package models

type FaqCategory struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Position int    `gorm:"default:0" json:"position"`
	Faqs     []Faq  `gorm:"foreignKey:CategoryID" json:"faqs"`
}

type Faq struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CategoryID uint   `gorm:"not null;index" json:"category_id"`
	Question   string `gorm:"type:text;not null" json:"question"`
	Answer     string `gorm:"type:text;not null" json:"answer"`
}
