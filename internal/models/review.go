package models

// Review - отзыв студента о компании. Публикуется после модерации.
type Review struct {
	BaseModel
	CompanyID string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_company_author" json:"company_id"`
	AuthorID  string       `gorm:"type:varchar(36);not null;uniqueIndex:idx_review_company_author" json:"author_id"`
	Rating    int          `gorm:"not null" json:"rating"`
	Title     string       `gorm:"type:varchar(255)" json:"title"`
	Body      string       `gorm:"type:text" json:"body"`
	Status    ReviewStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
