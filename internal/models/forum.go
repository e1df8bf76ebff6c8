package models

import "gorm.io/datatypes"

type ForumPost struct {
	BaseModel
	AuthorID     string                      `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Title        string                      `gorm:"type:varchar(255);not null" json:"title"`
	Body         string                      `gorm:"type:text;not null" json:"body"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	IsPinned     bool                        `gorm:"default:false" json:"is_pinned"`
	IsHidden     bool                        `gorm:"default:false;index" json:"is_hidden"`
	CommentCount int                         `gorm:"default:0" json:"comment_count"`

	Author   *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []ForumComment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

type ForumComment struct {
	BaseModel
	PostID   string `gorm:"type:varchar(36);not null;index" json:"post_id"`
	AuthorID string `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
	IsHidden bool   `gorm:"default:false" json:"is_hidden"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
