package service

import (
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"
)

// CommentAuthor is the lightweight author projection attached to tree nodes
type CommentAuthor struct {
	ID              string  `json:"id"`
	FullName        string  `json:"full_name"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// CommentNode is one node of the threaded view. Depth here is the display
// depth: it equals the stored depth except for replies whose literal parent
// already sits at the maximum, which are flattened onto the nearest shallower
// ancestor and shown at the maximum depth. ParentAuthor always refers to the
// literal parent so the UI can render "@OriginalAuthor" even when the reply
// is visually re-homed.
type CommentNode struct {
	ID              string         `json:"id"`
	RoadmapItemID   string         `json:"roadmap_item_id"`
	AuthorID        string         `json:"author_id"`
	Author          *CommentAuthor `json:"author,omitempty"`
	ParentCommentID *string        `json:"parent_comment_id,omitempty"`
	Content         string         `json:"content"`
	Depth           int            `json:"depth"`
	IsEdited        bool           `json:"is_edited"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ParentAuthor    *CommentAuthor `json:"parent_author,omitempty"`
	Replies         []*CommentNode `json:"replies"`
}

// BuildCommentTree folds a flat, creation-time-ascending comment list into a
// forest of root nodes. Storage caps depth at model.MaxCommentDepth but never
// forbids a comment at that depth from receiving replies; such replies are
// attached to the nearest ancestor whose depth is below the cap, so the
// rendered tree never exceeds the cap no matter how long the reply chain is.
//
// The function is pure: it never touches storage and never mutates its input.
func BuildCommentTree(comments []*model.Comment) []*CommentNode {
	byID := make(map[string]*model.Comment, len(comments))
	nodes := make(map[string]*CommentNode, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
		nodes[c.ID] = newCommentNode(c)
	}

	roots := make([]*CommentNode, 0)
	for _, c := range comments {
		node := nodes[c.ID]

		if c.ParentCommentID == nil {
			roots = append(roots, node)
			continue
		}

		parent, ok := byID[*c.ParentCommentID]
		if !ok {
			// Parent missing from the record set (e.g. deleted); show as root
			roots = append(roots, node)
			continue
		}

		node.ParentAuthor = commentAuthorOf(parent)

		if parent.Depth < model.MaxCommentDepth {
			nodes[parent.ID].Replies = append(nodes[parent.ID].Replies, node)
			continue
		}

		attachTo := findAttachmentParent(parent, byID)
		if attachTo == nil {
			// No eligible ancestor: data-integrity fallback, show as root
			roots = append(roots, node)
			continue
		}

		node.Depth = model.MaxCommentDepth
		nodes[attachTo.ID].Replies = append(nodes[attachTo.ID].Replies, node)
	}

	return roots
}

// findAttachmentParent walks the parent chain from the literal parent upward
// and returns the nearest ancestor whose stored depth is below the cap, or
// nil if the chain runs out first.
func findAttachmentParent(parent *model.Comment, byID map[string]*model.Comment) *model.Comment {
	current := parent
	for current != nil {
		if current.Depth < model.MaxCommentDepth {
			return current
		}
		if current.ParentCommentID == nil {
			return nil
		}
		current = byID[*current.ParentCommentID]
	}
	return nil
}

func newCommentNode(c *model.Comment) *CommentNode {
	return &CommentNode{
		ID:              c.ID,
		RoadmapItemID:   c.RoadmapItemID,
		AuthorID:        c.AuthorID,
		Author:          commentAuthorOf(c),
		ParentCommentID: c.ParentCommentID,
		Content:         c.Content,
		Depth:           c.Depth,
		IsEdited:        c.IsEdited,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Replies:         []*CommentNode{},
	}
}

func commentAuthorOf(c *model.Comment) *CommentAuthor {
	if c.Author.ID == "" {
		return nil
	}
	return &CommentAuthor{
		ID:              c.Author.ID,
		FullName:        c.Author.FullName,
		ProfileImageURL: c.Author.ProfileImageURL,
	}
}
