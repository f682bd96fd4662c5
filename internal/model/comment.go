package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MaxCommentDepth caps stored nesting; replies below it are collapsed for display
	MaxCommentDepth = 2
	// MaxCommentLength is the content ceiling in characters
	MaxCommentLength = 300
)

type Comment struct {
	ID              string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RoadmapItemID   string         `gorm:"type:uuid;not null;index" json:"roadmap_item_id"`
	AuthorID        string         `gorm:"type:uuid;not null;index" json:"author_id"`
	ParentCommentID *string        `gorm:"type:uuid;index" json:"parent_comment_id,omitempty"`
	Content         string         `gorm:"type:varchar(300);not null" json:"content"`
	Depth           int            `gorm:"not null;default:0" json:"depth"`
	IsEdited        bool           `gorm:"not null;default:false" json:"is_edited"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Comment) TableName() string {
	return "comments"
}
