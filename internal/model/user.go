package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName        string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email           string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"type:varchar(255);not null" json:"-"`
	ProfileImageURL *string   `gorm:"type:text" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
