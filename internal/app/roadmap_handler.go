package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rajpuc/GoalGrid/internal/service"
	"github.com/rajpuc/GoalGrid/internal/util"

	"github.com/gin-gonic/gin"
)

type RoadmapHandler struct {
	roadmapService service.RoadmapItemService
	commentService service.CommentService
}

func NewRoadmapHandler(roadmapService service.RoadmapItemService, commentService service.CommentService) *RoadmapHandler {
	return &RoadmapHandler{
		roadmapService: roadmapService,
		commentService: commentService,
	}
}

// CreateItem handles roadmap item creation
// POST /api/v1/roadmap-items
func (h *RoadmapHandler) CreateItem(c *gin.Context) {
	if _, exists := c.Get("userID"); !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.CreateRoadmapItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, formatValidationError(err))
		return
	}

	item, err := h.roadmapService.CreateItem(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingItemFields), errors.Is(err, service.ErrInvalidStatus):
			util.BadRequest(c, err.Error())
		default:
			util.InternalError(c, "Failed to create roadmap item")
		}
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Roadmap item created successfully", gin.H{"item": item})
}

// GetItems handles listing roadmap items newest first
// GET /api/v1/roadmap-items
func (h *RoadmapHandler) GetItems(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	list, err := h.roadmapService.GetItems(page, limit)
	if err != nil {
		util.InternalError(c, "Failed to retrieve roadmap items")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Roadmap items retrieved successfully", list)
}

// GetFilteredItems handles listing with status/category/search filters
// GET /api/v1/roadmap-items/filtered
func (h *RoadmapHandler) GetFilteredItems(c *gin.Context) {
	query := service.RoadmapItemQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortBy:   c.DefaultQuery("sort_by", "newest"),
		Page:     parseIntQuery(c, "page", 1),
		Limit:    parseIntQuery(c, "limit", 14),
	}

	list, err := h.roadmapService.GetFilteredItems(query)
	if err != nil {
		util.InternalError(c, "Failed to retrieve roadmap items")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Roadmap items retrieved successfully", list)
}

// GetFilters returns the distinct statuses and categories in use
// GET /api/v1/roadmap-items/filters
func (h *RoadmapHandler) GetFilters(c *gin.Context) {
	filters, err := h.roadmapService.GetUniqueFilters()
	if err != nil {
		util.InternalError(c, "Failed to retrieve filters")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Filters retrieved successfully", filters)
}

// GetItemDetails returns one roadmap item with its threaded comments
// GET /api/v1/roadmap-items/:id
func (h *RoadmapHandler) GetItemDetails(c *gin.Context) {
	itemID := c.Param("id")
	if itemID == "" {
		util.BadRequest(c, "Roadmap item ID is required")
		return
	}

	requestingUserID := ""
	if userID, exists := c.Get("userID"); exists {
		requestingUserID = userID.(string)
	}

	view, err := h.commentService.GetThreadedView(itemID, requestingUserID)
	if err != nil {
		if errors.Is(err, service.ErrRoadmapItemNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.InternalError(c, "Failed to retrieve roadmap item")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Roadmap item retrieved successfully", view)
}

// ToggleUpvote adds or removes the authenticated user's upvote
// POST /api/v1/roadmap-items/:id/upvote
func (h *RoadmapHandler) ToggleUpvote(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	itemID := c.Param("id")
	if itemID == "" {
		util.BadRequest(c, "Roadmap item ID is required")
		return
	}

	result, err := h.roadmapService.ToggleUpvote(userID.(string), itemID)
	if err != nil {
		if errors.Is(err, service.ErrRoadmapItemNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.InternalError(c, "Failed to toggle upvote")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Upvote toggled successfully", result)
}

func parseIntQuery(c *gin.Context, name string, defaultValue int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
