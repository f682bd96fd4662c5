package app

import (
	"errors"
	"net/http"

	"github.com/rajpuc/GoalGrid/internal/service"
	"github.com/rajpuc/GoalGrid/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications lists the authenticated user's notifications
// GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 20)

	list, err := h.notificationService.GetNotifications(userID.(string), page, limit)
	if err != nil {
		util.InternalError(c, "Failed to retrieve notifications")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notifications retrieved successfully", list)
}

// GetUnreadCount returns the number of unread notifications
// GET /api/v1/notifications/unread/count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.notificationService.CountUnread(userID.(string))
	if err != nil {
		util.InternalError(c, "Failed to count unread notifications")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"count": count})
}

// MarkAsRead marks a single notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	notificationID := c.Param("id")
	if notificationID == "" {
		util.BadRequest(c, "Notification ID is required")
		return
	}

	if err := h.notificationService.MarkAsRead(userID.(string), notificationID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			util.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotNotificationOwner):
			util.Forbidden(c, err.Error())
		default:
			util.InternalError(c, "Failed to mark notification as read")
		}
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllAsRead marks every notification for the user as read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.notificationService.MarkAllAsRead(userID.(string)); err != nil {
		util.InternalError(c, "Failed to mark notifications as read")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "All notifications marked as read", nil)
}
