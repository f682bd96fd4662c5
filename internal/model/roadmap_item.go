package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoadmapItem struct {
	ID           string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Status       string         `gorm:"type:varchar(50);not null;index" json:"status"`
	Category     string         `gorm:"type:varchar(100);not null;index" json:"category"`
	CommentCount int64          `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Upvotes []Upvote `gorm:"foreignKey:RoadmapItemID;references:ID" json:"upvotes,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *RoadmapItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (RoadmapItem) TableName() string {
	return "roadmap_items"
}

// Valid item statuses
const (
	StatusTodo       = "Todo"
	StatusInProgress = "In progress"
	StatusCompleted  = "Completed"
)

// IsValidStatus reports whether s is one of the allowed statuses
func IsValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Upvote records a single user's upvote on a roadmap item
type Upvote struct {
	ID            string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoadmapItemID string    `gorm:"type:uuid;not null;index:idx_item_user,unique" json:"roadmap_item_id"`
	UserID        string    `gorm:"type:uuid;not null;index:idx_item_user,unique" json:"user_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *Upvote) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Upvote) TableName() string {
	return "roadmap_item_upvotes"
}
