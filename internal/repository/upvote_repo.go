package repository

import (
	"fmt"
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/util"

	"gorm.io/gorm"
)

type UpvoteRepository interface {
	Create(upvote *model.Upvote) error
	FindByUserAndItem(userID, roadmapItemID string) (*model.Upvote, error)
	DeleteByUserAndItem(userID, roadmapItemID string) error
	CountByItem(roadmapItemID string) (int64, error)
	HasUpvoted(userID, roadmapItemID string) (bool, error)
}

type upvoteRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	upvoteCountCachePrefix = "upvote:count:"
	upvoteCacheExpiration  = 10 * time.Minute
)

func NewUpvoteRepository(db *gorm.DB, redis *util.RedisClient) UpvoteRepository {
	return &upvoteRepository{
		db:    db,
		redis: redis,
	}
}

// Create records an upvote and invalidates the count cache
func (r *upvoteRepository) Create(upvote *model.Upvote) error {
	if err := r.db.Create(upvote).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(upvoteCountCachePrefix + upvote.RoadmapItemID)
	}

	return nil
}

// FindByUserAndItem finds a user's upvote on an item (to check toggle state)
func (r *upvoteRepository) FindByUserAndItem(userID, roadmapItemID string) (*model.Upvote, error) {
	var upvote model.Upvote
	err := r.db.Where("user_id = ? AND roadmap_item_id = ?", userID, roadmapItemID).First(&upvote).Error
	if err != nil {
		return nil, err
	}
	return &upvote, nil
}

// DeleteByUserAndItem removes a user's upvote and invalidates the count cache
func (r *upvoteRepository) DeleteByUserAndItem(userID, roadmapItemID string) error {
	err := r.db.Where("user_id = ? AND roadmap_item_id = ?", userID, roadmapItemID).
		Delete(&model.Upvote{}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(upvoteCountCachePrefix + roadmapItemID)
	}

	return nil
}

// CountByItem counts upvotes on an item, checking cache first
func (r *upvoteRepository) CountByItem(roadmapItemID string) (int64, error) {
	cacheKey := upvoteCountCachePrefix + roadmapItemID
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
	err := r.db.Model(&model.Upvote{}).
		Where("roadmap_item_id = ?", roadmapItemID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(cacheKey, fmt.Sprintf("%d", count), upvoteCacheExpiration)
	}

	return count, nil
}

// HasUpvoted reports whether the user has upvoted the item
func (r *upvoteRepository) HasUpvoted(userID, roadmapItemID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Upvote{}).
		Where("user_id = ? AND roadmap_item_id = ?", userID, roadmapItemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
