package models

type Country struct {
	ID      uint     `gorm:"primaryKey" json:"id"`
	Name    string   `gorm:"size:255;not null" json:"name"`
	Code    string   `gorm:"size:2" json:"code"`
	Regions []Region `gorm:"foreignKey:CountryID" json:"regions,omitempty"`
}

type Region struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CountryID uint   `gorm:"not null;index" json:"country_id"`
	Name      string `gorm:"size:255;not null" json:"name"`
}
