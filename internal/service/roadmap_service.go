package service

import (
	"errors"
	"strings"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrMissingItemFields = errors.New("title, description, status and category are all required")
	ErrInvalidStatus     = errors.New("status must be one of: Todo, In progress, Completed")
)

type RoadmapItemService interface {
	CreateItem(req CreateRoadmapItemRequest) (*model.RoadmapItem, error)
	GetItems(page, limit int) (*RoadmapItemList, error)
	GetFilteredItems(query RoadmapItemQuery) (*RoadmapItemList, error)
	GetUniqueFilters() (*RoadmapFilters, error)
	ToggleUpvote(userID, roadmapItemID string) (*UpvoteResult, error)
}

type roadmapItemService struct {
	itemRepo   repository.RoadmapItemRepository
	upvoteRepo repository.UpvoteRepository
}

type CreateRoadmapItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

type RoadmapItemQuery struct {
	Status   string
	Category string
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

type RoadmapItemList struct {
	Items   []*model.RoadmapItem `json:"items"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
	HasMore bool                 `json:"has_more"`
}

type RoadmapFilters struct {
	Statuses   []string `json:"statuses"`
	Categories []string `json:"categories"`
}

type UpvoteResult struct {
	UpvotesCount int64 `json:"upvotes_count"`
	Upvoted      bool  `json:"upvoted"`
}

func NewRoadmapItemService(
	itemRepo repository.RoadmapItemRepository,
	upvoteRepo repository.UpvoteRepository,
) RoadmapItemService {
	return &roadmapItemService{
		itemRepo:   itemRepo,
		upvoteRepo: upvoteRepo,
	}
}

// CreateItem creates a roadmap item with all fields required
func (s *roadmapItemService) CreateItem(req CreateRoadmapItemRequest) (*model.RoadmapItem, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)

	if title == "" || description == "" || req.Status == "" || category == "" {
		return nil, ErrMissingItemFields
	}
	if !model.IsValidStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	item := &model.RoadmapItem{
		Title:       title,
		Description: description,
		Status:      req.Status,
		Category:    category,
	}

	if err := s.itemRepo.Create(item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItems returns items newest first with pagination
func (s *roadmapItemService) GetItems(page, limit int) (*RoadmapItemList, error) {
	page, limit = normalizePage(page, limit, 10)
	offset := (page - 1) * limit

	items, total, err := s.itemRepo.FindAll(limit, offset)
	if err != nil {
		return nil, err
	}

	return &RoadmapItemList{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// GetFilteredItems returns items narrowed by status/category/search, ordered
// by newest (default), oldest, or upvote popularity
func (s *roadmapItemService) GetFilteredItems(query RoadmapItemQuery) (*RoadmapItemList, error) {
	page, limit := normalizePage(query.Page, query.Limit, 14)
	offset := (page - 1) * limit

	items, total, err := s.itemRepo.FindFiltered(repository.RoadmapItemFilter{
		Status:   query.Status,
		Category: query.Category,
		Search:   query.Search,
		SortBy:   query.SortBy,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	return &RoadmapItemList{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// GetUniqueFilters returns the statuses and categories currently in use
func (s *roadmapItemService) GetUniqueFilters() (*RoadmapFilters, error) {
	statuses, err := s.itemRepo.DistinctStatuses()
	if err != nil {
		return nil, err
	}

	categories, err := s.itemRepo.DistinctCategories()
	if err != nil {
		return nil, err
	}

	return &RoadmapFilters{
		Statuses:   statuses,
		Categories: categories,
	}, nil
}

// ToggleUpvote adds the user's upvote if absent, removes it if present
func (s *roadmapItemService) ToggleUpvote(userID, roadmapItemID string) (*UpvoteResult, error) {
	if _, err := s.itemRepo.FindByID(roadmapItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoadmapItemNotFound
		}
		return nil, err
	}

	existing, err := s.upvoteRepo.FindByUserAndItem(userID, roadmapItemID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	upvoted := false
	if existing != nil {
		if err := s.upvoteRepo.DeleteByUserAndItem(userID, roadmapItemID); err != nil {
			return nil, err
		}
	} else {
		upvote := &model.Upvote{
			RoadmapItemID: roadmapItemID,
			UserID:        userID,
		}
		if err := s.upvoteRepo.Create(upvote); err != nil {
			return nil, err
		}
		upvoted = true
	}

	count, err := s.upvoteRepo.CountByItem(roadmapItemID)
	if err != nil {
		return nil, err
	}

	return &UpvoteResult{
		UpvotesCount: count,
		Upvoted:      upvoted,
	}, nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
