package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/util"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindChildren(parentID string) ([]*model.Comment, error)
	ListByRoadmapItem(roadmapItemID string) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id string) error
	CountByRoadmapItem(roadmapItemID string) (int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentCachePrefix       = "comment:"
	commentByItemCachePrefix = "comment:item:"
	commentCountCachePrefix  = "comment:count:item:"
	commentCacheExpiration   = 15 * time.Minute
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new comment and invalidates related caches
func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.invalidateItemCache(comment.RoadmapItemID)
	}

	return nil
}

// FindByID finds a comment by ID
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(commentCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var comment model.Comment
	err := r.db.Preload("Author").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheComment(&comment)
	}

	return &comment, nil
}

// FindChildren returns the direct children of a comment in creation order.
// This read is intentionally never cached: the cascade delete relies on it
// as its source of freshness, so a stale answer could strand records or
// skew the removal count.
func (r *commentRepository) FindChildren(parentID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("parent_comment_id = ?", parentID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByRoadmapItem returns every comment on an item, oldest first.
// Ascending creation order is required for deterministic tree building.
func (r *commentRepository) ListByRoadmapItem(roadmapItemID string) ([]*model.Comment, error) {
	cacheKey := commentByItemCachePrefix + roadmapItemID
	if r.redis != nil {
		cached, err := r.getListFromCache(cacheKey)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var comments []*model.Comment
	err := r.db.Preload("Author").
		Where("roadmap_item_id = ?", roadmapItemID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheCommentList(cacheKey, comments)
	}

	return comments, nil
}

// Update saves a comment and invalidates related caches
func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Save(comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(commentCachePrefix + comment.ID)
		r.invalidateItemCache(comment.RoadmapItemID)
	}

	return nil
}

// Delete removes exactly one comment record. Cascading over a subtree is the
// service's responsibility.
func (r *commentRepository) Delete(id string) error {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(commentCachePrefix + id)
		r.invalidateItemCache(comment.RoadmapItemID)
	}

	return nil
}

// CountByRoadmapItem counts all comments (root + nested) on an item
func (r *commentRepository) CountByRoadmapItem(roadmapItemID string) (int64, error) {
	cacheKey := commentCountCachePrefix + roadmapItemID
	if r.redis != nil {
		cached, err := r.redis.Get(cacheKey)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("roadmap_item_id = ?", roadmapItemID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(cacheKey, fmt.Sprintf("%d", count), commentCacheExpiration)
	}

	return count, nil
}

// Cache helpers

func (r *commentRepository) cacheComment(comment *model.Comment) {
	commentJSON, err := json.Marshal(comment)
	if err != nil {
		return
	}
	r.redis.Set(commentCachePrefix+comment.ID, string(commentJSON), commentCacheExpiration)
}

func (r *commentRepository) cacheCommentList(key string, comments []*model.Comment) {
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return
	}
	r.redis.Set(key, string(commentsJSON), commentCacheExpiration)
}

func (r *commentRepository) getFromCache(key string) (*model.Comment, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var comment model.Comment
	if err := json.Unmarshal([]byte(cached), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) getListFromCache(key string) ([]*model.Comment, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var comments []*model.Comment
	if err := json.Unmarshal([]byte(cached), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) invalidateItemCache(roadmapItemID string) {
	r.redis.Delete(commentByItemCachePrefix + roadmapItemID)
	r.redis.Delete(commentCountCachePrefix + roadmapItemID)
}
