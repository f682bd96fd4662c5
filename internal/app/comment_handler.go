package app

import (
	"errors"
	"net/http"

	"github.com/rajpuc/GoalGrid/internal/service"
	"github.com/rajpuc/GoalGrid/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// CreateComment handles comment and reply creation
// POST /api/v1/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, formatValidationError(err))
		return
	}

	comment, err := h.commentService.CreateComment(userID.(string), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoadmapItemNotFound),
			errors.Is(err, service.ErrParentCommentNotFound):
			util.NotFound(c, err.Error())
		case errors.Is(err, service.ErrParentItemMismatch),
			errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrContentTooLong):
			util.BadRequest(c, err.Error())
		default:
			util.InternalError(c, "Failed to create comment")
		}
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment created successfully", gin.H{"comment": comment})
}

// UpdateComment handles editing a comment's content
// PUT /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	commentID := c.Param("id")
	if commentID == "" {
		util.BadRequest(c, "Comment ID is required")
		return
	}

	var req service.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, formatValidationError(err))
		return
	}

	comment, err := h.commentService.UpdateComment(userID.(string), commentID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			util.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotCommentAuthor):
			util.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrContentTooLong):
			util.BadRequest(c, err.Error())
		default:
			util.InternalError(c, "Failed to update comment")
		}
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment updated successfully", gin.H{"comment": comment})
}

// DeleteComment handles deleting a comment and all of its descendants
// DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	commentID := c.Param("id")
	if commentID == "" {
		util.BadRequest(c, "Comment ID is required")
		return
	}

	totalRemoved, err := h.commentService.DeleteComment(userID.(string), commentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			util.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotCommentAuthor):
			util.Forbidden(c, err.Error())
		default:
			util.InternalError(c, "Failed to delete comment")
		}
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted successfully", gin.H{"total_removed": totalRemoved})
}
