package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/repository"
	"github.com/rajpuc/GoalGrid/internal/util"

	"gorm.io/gorm"
)

const (
	NotificationExchange   = "notification_exchange"
	NotificationQueueName  = "notification_queue"
	NotificationRoutingKey = "notification"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another user")
)

// NotificationMessage is the wire format published to RabbitMQ and consumed
// by the notification worker.
type NotificationMessage struct {
	UserID    string            `json:"user_id"`
	SenderID  string            `json:"sender_id,omitempty"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	TargetID  string            `json:"target_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type NotificationList struct {
	Notifications []*model.Notification `json:"notifications"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

type NotificationService interface {
	SendCommentReplyNotification(receiverID, senderID, senderName, commentID, roadmapItemID, content string) error
	GetNotifications(userID string, page, limit int) (*NotificationList, error)
	CountUnread(userID string) (int64, error)
	MarkAsRead(userID, notificationID string) error
	MarkAllAsRead(userID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	rabbitmq         *util.RabbitMQClient
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	rabbitmq *util.RabbitMQClient,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		rabbitmq:         rabbitmq,
	}
}

// SendCommentReplyNotification publishes a reply notification to RabbitMQ so
// the worker persists it asynchronously. When the broker is unavailable the
// notification is written to the database directly.
func (s *notificationService) SendCommentReplyNotification(receiverID, senderID, senderName, commentID, roadmapItemID, content string) error {
	preview := content
	if len([]rune(preview)) > 80 {
		preview = string([]rune(preview)[:80]) + "..."
	}

	msg := NotificationMessage{
		UserID:   receiverID,
		SenderID: senderID,
		Type:     model.NotificationTypeCommentReply,
		Title:    "New reply to your comment",
		Message:  fmt.Sprintf("%s replied: %s", senderName, preview),
		TargetID: commentID,
		Data: map[string]string{
			"comment_id":      commentID,
			"roadmap_item_id": roadmapItemID,
		},
		Timestamp: time.Now(),
	}

	if s.rabbitmq != nil {
		body, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := s.rabbitmq.Publish(NotificationExchange, NotificationRoutingKey, body); err == nil {
			return nil
		} else {
			log.Printf("Failed to publish notification, falling back to direct write: %v", err)
		}
	}

	return persistNotificationMessage(s.notificationRepo, &msg)
}

// persistNotificationMessage writes a notification message straight to the
// database. Shared by the broker fallback and the worker.
func persistNotificationMessage(repo repository.NotificationRepository, msg *NotificationMessage) error {
	notification := &model.Notification{
		UserID:  msg.UserID,
		Type:    msg.Type,
		Title:   msg.Title,
		Message: msg.Message,
	}
	if msg.SenderID != "" {
		senderID := msg.SenderID
		notification.SenderID = &senderID
	}
	if msg.TargetID != "" {
		targetID := msg.TargetID
		notification.TargetID = &targetID
	}
	if len(msg.Data) > 0 {
		data, err := json.Marshal(msg.Data)
		if err == nil {
			notification.Data = string(data)
		}
	}

	return repo.Create(notification)
}

func (s *notificationService) GetNotifications(userID string, page, limit int) (*NotificationList, error) {
	page, limit = normalizePage(page, limit, 20)
	offset := (page - 1) * limit

	notifications, err := s.notificationRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &NotificationList{
		Notifications: notifications,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (s *notificationService) CountUnread(userID string) (int64, error) {
	return s.notificationRepo.CountUnreadByUserID(userID)
}

func (s *notificationService) MarkAsRead(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return ErrNotNotificationOwner
	}
	return s.notificationRepo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notificationRepo.MarkAllAsRead(userID)
}
