package service

import (
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/rajpuc/GoalGrid/internal/model"
	"github.com/rajpuc/GoalGrid/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrRoadmapItemNotFound   = errors.New("roadmap item not found")
	ErrParentCommentNotFound = errors.New("parent comment not found")
	ErrParentItemMismatch    = errors.New("parent comment does not belong to this roadmap item")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrNotCommentAuthor      = errors.New("only the comment author can modify this comment")
	ErrEmptyContent          = errors.New("comment content is required")
	ErrContentTooLong        = errors.New("comment content exceeds 300 characters")
)

type CommentService interface {
	CreateComment(userID string, req CreateCommentRequest) (*model.Comment, error)
	UpdateComment(userID, commentID string, req UpdateCommentRequest) (*model.Comment, error)
	DeleteComment(userID, commentID string) (int64, error)
	GetThreadedView(roadmapItemID, requestingUserID string) (*ThreadedView, error)
}

type commentService struct {
	commentRepo         repository.CommentRepository
	itemRepo            repository.RoadmapItemRepository
	upvoteRepo          repository.UpvoteRepository
	userRepo            repository.UserRepository
	notificationService NotificationService
}

type CreateCommentRequest struct {
	RoadmapItemID   string  `json:"roadmap_item_id" binding:"required"`
	ParentCommentID *string `json:"parent_comment_id,omitempty"`
	Content         string  `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// RoadmapItemDetails is an item decorated with upvote info for the requesting user
type RoadmapItemDetails struct {
	*model.RoadmapItem
	UpvotesCount int64 `json:"upvotes_count"`
	HasUpvoted   bool  `json:"has_upvoted"`
}

// ThreadedView is a roadmap item together with its nested comment forest
type ThreadedView struct {
	RoadmapItem *RoadmapItemDetails `json:"roadmap_item"`
	Comments    []*CommentNode      `json:"comments"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	itemRepo repository.RoadmapItemRepository,
	upvoteRepo repository.UpvoteRepository,
	userRepo repository.UserRepository,
	notificationService NotificationService,
) CommentService {
	return &commentService{
		commentRepo:         commentRepo,
		itemRepo:            itemRepo,
		upvoteRepo:          upvoteRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// CreateComment creates a comment (or a reply) and bumps the owning item's
// comment counter by one in a single atomic column update.
func (s *commentService) CreateComment(userID string, req CreateCommentRequest) (*model.Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	// Validate roadmap item exists
	if _, err := s.itemRepo.FindByID(req.RoadmapItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoadmapItemNotFound
		}
		return nil, err
	}

	// Default to top-level comment
	depth := 0
	var parent *model.Comment

	// An empty parent id means a root comment; never store the empty string
	parentID := req.ParentCommentID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	if parentID != nil {
		parent, err = s.commentRepo.FindByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentCommentNotFound
			}
			return nil, err
		}
		if parent.RoadmapItemID != req.RoadmapItemID {
			return nil, ErrParentItemMismatch
		}

		// Nesting is clamped at the maximum depth; the stored value is final
		depth = parent.Depth + 1
		if depth > model.MaxCommentDepth {
			depth = model.MaxCommentDepth
		}
	}

	comment := &model.Comment{
		RoadmapItemID:   req.RoadmapItemID,
		AuthorID:        userID,
		ParentCommentID: parentID,
		Content:         content,
		Depth:           depth,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Counter is adjusted immediately after the insert; a failure here is
	// recoverable drift, not a reason to fail the request
	if err := s.itemRepo.IncrementCommentCount(req.RoadmapItemID, 1); err != nil {
		log.Printf("Failed to increment comment count for item %s: %v", req.RoadmapItemID, err)
	}

	s.notifyReply(userID, parent, comment)

	// Reload with the author relationship
	return s.commentRepo.FindByID(comment.ID)
}

// UpdateComment edits a comment's content. Only the author may edit, and the
// record is marked as edited from the first change onward.
func (s *commentService) UpdateComment(userID, commentID string, req UpdateCommentRequest) (*model.Comment, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.AuthorID != userID {
		return nil, ErrNotCommentAuthor
	}

	comment.Content = content
	comment.IsEdited = true

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	return s.commentRepo.FindByID(comment.ID)
}

// DeleteComment removes a comment and its entire reply subtree, returning the
// number of records removed. The owning item's counter is decremented by that
// exact number.
func (s *commentService) DeleteComment(userID, commentID string) (int64, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}

	if comment.AuthorID != userID {
		return 0, ErrNotCommentAuthor
	}

	removed, deleteErr := s.deleteSubtree(commentID)

	// Decrement by what was actually deleted, even after a partial failure,
	// so the counter never drifts from the stored records
	if removed > 0 {
		if err := s.itemRepo.IncrementCommentCount(comment.RoadmapItemID, -removed); err != nil {
			log.Printf("Failed to decrement comment count for item %s: %v", comment.RoadmapItemID, err)
		}
	}

	if deleteErr != nil {
		return removed, deleteErr
	}
	return removed, nil
}

// deleteSubtree removes a comment subtree children-first using an explicit
// stack (reply chains can be arbitrarily long even though display depth is
// capped). A node is deleted only once a fresh FindChildren call comes back
// empty, so replies inserted concurrently during the delete window are swept
// up and counted too.
func (s *commentService) deleteSubtree(id string) (int64, error) {
	var removed int64
	stack := []string{id}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		children, err := s.commentRepo.FindChildren(current)
		if err != nil {
			return removed, err
		}

		if len(children) == 0 {
			stack = stack[:len(stack)-1]
			if err := s.commentRepo.Delete(current); err != nil {
				return removed, err
			}
			removed++
			continue
		}

		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}

	return removed, nil
}

// GetThreadedView returns the item with upvote info for the requesting user
// (anonymous allowed) and the full nested comment forest.
func (s *commentService) GetThreadedView(roadmapItemID, requestingUserID string) (*ThreadedView, error) {
	item, err := s.itemRepo.FindByID(roadmapItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoadmapItemNotFound
		}
		return nil, err
	}

	comments, err := s.commentRepo.ListByRoadmapItem(roadmapItemID)
	if err != nil {
		return nil, err
	}

	// Counter drift left by a partial create/delete failure is repaired here
	// against the authoritative comment count
	if count, countErr := s.commentRepo.CountByRoadmapItem(roadmapItemID); countErr == nil && count != item.CommentCount {
		if err := s.itemRepo.IncrementCommentCount(roadmapItemID, count-item.CommentCount); err != nil {
			log.Printf("Failed to reconcile comment count for item %s: %v", roadmapItemID, err)
		} else {
			item.CommentCount = count
		}
	}

	upvotesCount, err := s.upvoteRepo.CountByItem(roadmapItemID)
	if err != nil {
		return nil, err
	}

	hasUpvoted := false
	if requestingUserID != "" {
		hasUpvoted, err = s.upvoteRepo.HasUpvoted(requestingUserID, roadmapItemID)
		if err != nil {
			return nil, err
		}
	}

	return &ThreadedView{
		RoadmapItem: &RoadmapItemDetails{
			RoadmapItem:  item,
			UpvotesCount: upvotesCount,
			HasUpvoted:   hasUpvoted,
		},
		Comments: BuildCommentTree(comments),
	}, nil
}

// notifyReply tells the parent comment's author about a new reply. Replying
// to yourself is not notified.
func (s *commentService) notifyReply(userID string, parent, reply *model.Comment) {
	if s.notificationService == nil || parent == nil || parent.AuthorID == userID {
		return
	}

	sender, err := s.userRepo.FindByID(userID)
	if err != nil {
		return
	}

	go func() {
		if err := s.notificationService.SendCommentReplyNotification(
			parent.AuthorID,
			userID,
			sender.FullName,
			reply.ID,
			reply.RoadmapItemID,
			reply.Content,
		); err != nil {
			log.Printf("Failed to send comment reply notification: %v", err)
		}
	}()
}

// validateContent trims and bounds comment content
func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}
