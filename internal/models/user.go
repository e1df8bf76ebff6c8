package models

import "time"

type User struct {
	BaseModel
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	Name          string     `gorm:"type:varchar(255)" json:"name"`
	Role          UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status        UserStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	IsVerified    bool       `gorm:"default:false" json:"is_verified"`
	ResetToken    string     `gorm:"type:varchar(128);index" json:"-"`
	ResetTokenExp *time.Time `json:"-"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	StudentProfile   *StudentProfile   `gorm:"foreignKey:UserID" json:"student_profile,omitempty"`
	RecruiterProfile *RecruiterProfile `gorm:"foreignKey:UserID" json:"recruiter_profile,omitempty"`
}

func (u *User) IsStudent() bool   { return u.Role == UserRoleStudent }
func (u *User) IsRecruiter() bool { return u.Role == UserRoleRecruiter }
func (u *User) IsAdmin() bool     { return u.Role == UserRoleAdmin }

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	Token     string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
