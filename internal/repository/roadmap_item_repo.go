package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/util"

	"gorm.io/gorm"
)

// RoadmapItemFilter narrows and orders a filtered listing
type RoadmapItemFilter struct {
	Status   string
	Category string
	Search   string
	SortBy   string // "newest" (default), "oldest", "popularity"
	Limit    int
	Offset   int
}

type RoadmapItemRepository interface {
	Create(item *model.RoadmapItem) error
	FindByID(id string) (*model.RoadmapItem, error)
	FindAll(limit, offset int) ([]*model.RoadmapItem, int64, error)
	FindFiltered(filter RoadmapItemFilter) ([]*model.RoadmapItem, int64, error)
	DistinctStatuses() ([]string, error)
	DistinctCategories() ([]string, error)
	IncrementCommentCount(id string, delta int64) error
}

type roadmapItemRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	itemCachePrefix     = "roadmap:item:"
	itemListCachePrefix = "roadmap:list:"
	itemCacheExpiration = 15 * time.Minute
)

func NewRoadmapItemRepository(db *gorm.DB, redis *util.RedisClient) RoadmapItemRepository {
	return &roadmapItemRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new roadmap item and invalidates list caches
func (r *roadmapItemRepository) Create(item *model.RoadmapItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.DeletePattern(itemListCachePrefix + "*")
	}

	return nil
}

// FindByID finds a roadmap item by ID, checking cache first
func (r *roadmapItemRepository) FindByID(id string) (*model.RoadmapItem, error) {
	if r.redis != nil {
		cached, err := r.getFromCache(itemCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var item model.RoadmapItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		r.cacheItem(&item)
	}

	return &item, nil
}

// FindAll returns items newest first with the total count for pagination
func (r *roadmapItemRepository) FindAll(limit, offset int) ([]*model.RoadmapItem, int64, error) {
	cacheKey := fmt.Sprintf("%sall:%d:%d", itemListCachePrefix, limit, offset)
	if r.redis != nil {
		cached, err := r.getListFromCache(cacheKey)
		if err == nil && cached != nil {
			var total int64
			if err := r.db.Model(&model.RoadmapItem{}).Count(&total).Error; err == nil {
				return cached, total, nil
			}
		}
	}

	var items []*model.RoadmapItem
	err := r.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.Model(&model.RoadmapItem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		r.cacheItemList(cacheKey, items)
	}

	return items, total, nil
}

// FindFiltered returns items matching status/category/search with the chosen order.
// Status and category are matched case-insensitively but exactly; search is a
// partial match over title and description.
func (r *roadmapItemRepository) FindFiltered(filter RoadmapItemFilter) ([]*model.RoadmapItem, int64, error) {
	query := r.db.Model(&model.RoadmapItem{})

	if filter.Status != "" {
		query = query.Where("LOWER(status) = LOWER(?)", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.SortBy {
	case "popularity":
		query = query.Order("(SELECT COUNT(*) FROM roadmap_item_upvotes u WHERE u.roadmap_item_id = roadmap_items.id) DESC")
	case "oldest":
		query = query.Order("created_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var items []*model.RoadmapItem
	err := query.Limit(filter.Limit).Offset(filter.Offset).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// DistinctStatuses returns every status currently in use
func (r *roadmapItemRepository) DistinctStatuses() ([]string, error) {
	var statuses []string
	err := r.db.Model(&model.RoadmapItem{}).
		Distinct("status").
		Pluck("status", &statuses).Error
	return statuses, err
}

// DistinctCategories returns every category currently in use
func (r *roadmapItemRepository) DistinctCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.RoadmapItem{}).
		Distinct("category").
		Pluck("category", &categories).Error
	return categories, err
}

// IncrementCommentCount atomically adjusts the denormalized comment counter.
// Delta is positive on create and negative on cascade delete; the GREATEST
// guard keeps raced decrements from driving the stored value below zero.
func (r *roadmapItemRepository) IncrementCommentCount(id string, delta int64) error {
	err := r.db.Model(&model.RoadmapItem{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count + ?, 0)", delta)).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(itemCachePrefix + id)
	}

	return nil
}

// Cache helpers

func (r *roadmapItemRepository) cacheItem(item *model.RoadmapItem) {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return
	}
	r.redis.Set(itemCachePrefix+item.ID, string(itemJSON), itemCacheExpiration)
}

func (r *roadmapItemRepository) cacheItemList(key string, items []*model.RoadmapItem) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return
	}
	r.redis.Set(key, string(itemsJSON), itemCacheExpiration)
}

func (r *roadmapItemRepository) getFromCache(key string) (*model.RoadmapItem, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var item model.RoadmapItem
	if err := json.Unmarshal([]byte(cached), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *roadmapItemRepository) getListFromCache(key string) ([]*model.RoadmapItem, error) {
	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var items []*model.RoadmapItem
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		return nil, err
	}
	return items, nil
}
