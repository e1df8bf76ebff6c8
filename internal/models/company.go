package models

type Company struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Website     string  `json:"website"`
	Industry    string  `gorm:"type:varchar(100);index" json:"industry"`
	Description string  `gorm:"type:text" json:"description"`
	Location    string  `gorm:"type:varchar(255)" json:"location"`
	LogoURL     string  `json:"logo_url"`
	IsVerified  bool    `gorm:"default:false" json:"is_verified"`
	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	CreatedBy   string  `gorm:"type:varchar(36)" json:"created_by"`
}
