package service

import (
	"testing"

	"github.com/rajpuc/GoalGrid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemValidatesFields(t *testing.T) {
	svc := NewRoadmapItemService(newFakeItemRepo(), newFakeUpvoteRepo())

	_, err := svc.CreateItem(CreateRoadmapItemRequest{
		Title:    "Dark mode",
		Status:   model.StatusTodo,
		Category: "UI",
	})
	assert.ErrorIs(t, err, ErrMissingItemFields)

	_, err = svc.CreateItem(CreateRoadmapItemRequest{
		Title:       "  ",
		Description: "desc",
		Status:      model.StatusTodo,
		Category:    "UI",
	})
	assert.ErrorIs(t, err, ErrMissingItemFields)
}

func TestCreateItemRejectsUnknownStatus(t *testing.T) {
	svc := NewRoadmapItemService(newFakeItemRepo(), newFakeUpvoteRepo())

	_, err := svc.CreateItem(CreateRoadmapItemRequest{
		Title:       "Dark mode",
		Description: "Dark theme for the dashboard",
		Status:      "Shipped",
		Category:    "UI",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateItemTrimsAndStores(t *testing.T) {
	itemRepo := newFakeItemRepo()
	svc := NewRoadmapItemService(itemRepo, newFakeUpvoteRepo())

	item, err := svc.CreateItem(CreateRoadmapItemRequest{
		Title:       "  Dark mode  ",
		Description: "Dark theme for the dashboard",
		Status:      model.StatusInProgress,
		Category:    " UI ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dark mode", item.Title)
	assert.Equal(t, "UI", item.Category)
	assert.Equal(t, model.StatusInProgress, item.Status)
	assert.Equal(t, int64(0), item.CommentCount)

	stored, err := itemRepo.FindByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, stored)
}

func TestToggleUpvoteAddsThenRemoves(t *testing.T) {
	item := &model.RoadmapItem{ID: "item-1", Title: "Dark mode", Status: model.StatusTodo, Category: "UI"}
	upvoteRepo := newFakeUpvoteRepo()
	svc := NewRoadmapItemService(newFakeItemRepo(item), upvoteRepo)

	result, err := svc.ToggleUpvote("alice", item.ID)
	require.NoError(t, err)
	assert.True(t, result.Upvoted)
	assert.Equal(t, int64(1), result.UpvotesCount)

	result, err = svc.ToggleUpvote("alice", item.ID)
	require.NoError(t, err)
	assert.False(t, result.Upvoted)
	assert.Equal(t, int64(0), result.UpvotesCount)
}

func TestToggleUpvoteIsPerUser(t *testing.T) {
	item := &model.RoadmapItem{ID: "item-1", Title: "Dark mode", Status: model.StatusTodo, Category: "UI"}
	svc := NewRoadmapItemService(newFakeItemRepo(item), newFakeUpvoteRepo())

	_, err := svc.ToggleUpvote("alice", item.ID)
	require.NoError(t, err)

	result, err := svc.ToggleUpvote("bob", item.ID)
	require.NoError(t, err)
	assert.True(t, result.Upvoted)
	assert.Equal(t, int64(2), result.UpvotesCount)

	// alice removing hers leaves bob's in place
	result, err = svc.ToggleUpvote("alice", item.ID)
	require.NoError(t, err)
	assert.False(t, result.Upvoted)
	assert.Equal(t, int64(1), result.UpvotesCount)
}

func TestToggleUpvoteItemNotFound(t *testing.T) {
	svc := NewRoadmapItemService(newFakeItemRepo(), newFakeUpvoteRepo())

	_, err := svc.ToggleUpvote("alice", "missing")
	assert.ErrorIs(t, err, ErrRoadmapItemNotFound)
}

func TestGetUniqueFilters(t *testing.T) {
	itemRepo := newFakeItemRepo(
		&model.RoadmapItem{ID: "i1", Title: "A", Status: model.StatusTodo, Category: "UI"},
		&model.RoadmapItem{ID: "i2", Title: "B", Status: model.StatusTodo, Category: "API"},
		&model.RoadmapItem{ID: "i3", Title: "C", Status: model.StatusCompleted, Category: "UI"},
	)
	svc := NewRoadmapItemService(itemRepo, newFakeUpvoteRepo())

	filters, err := svc.GetUniqueFilters()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{model.StatusTodo, model.StatusCompleted}, filters.Statuses)
	assert.ElementsMatch(t, []string{"UI", "API"}, filters.Categories)
}

func TestGetItemsNormalizesPagination(t *testing.T) {
	itemRepo := newFakeItemRepo(
		&model.RoadmapItem{ID: "i1", Title: "A", Status: model.StatusTodo, Category: "UI"},
	)
	svc := NewRoadmapItemService(itemRepo, newFakeUpvoteRepo())

	list, err := svc.GetItems(0, -5)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 10, list.Limit)
	assert.Equal(t, int64(1), list.Total)
	assert.False(t, list.HasMore)
}
