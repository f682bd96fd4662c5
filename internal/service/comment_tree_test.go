package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rajpuc/GoalGrid/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeComment(id, itemID, authorID string, parentID *string, depth int, createdAt time.Time) *model.Comment {
	return &model.Comment{
		ID:              id,
		RoadmapItemID:   itemID,
		AuthorID:        authorID,
		ParentCommentID: parentID,
		Content:         "content of " + id,
		Depth:           depth,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
		Author: model.User{
			ID:       authorID,
			FullName: "User " + authorID,
		},
	}
}

func strPtr(s string) *string { return &s }

func TestBuildCommentTreeEmpty(t *testing.T) {
	roots := BuildCommentTree(nil)
	assert.Empty(t, roots)

	roots = BuildCommentTree([]*model.Comment{})
	assert.Empty(t, roots)
}

func TestBuildCommentTreeSingleRoot(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("c1", "item1", "alice", nil, 0, base),
	}

	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	assert.Equal(t, "c1", roots[0].ID)
	assert.Equal(t, 0, roots[0].Depth)
	assert.Nil(t, roots[0].ParentAuthor)
	assert.NotNil(t, roots[0].Replies)
	assert.Empty(t, roots[0].Replies)
}

func TestBuildCommentTreeNestsUpToCap(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("root", "item1", "alice", nil, 0, base),
		makeComment("child", "item1", "bob", strPtr("root"), 1, base.Add(time.Minute)),
		makeComment("grandchild", "item1", "carol", strPtr("child"), 2, base.Add(2*time.Minute)),
	}

	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 1)

	child := roots[0].Replies[0]
	assert.Equal(t, "child", child.ID)
	assert.Equal(t, 1, child.Depth)
	require.NotNil(t, child.ParentAuthor)
	assert.Equal(t, "alice", child.ParentAuthor.ID)

	require.Len(t, child.Replies, 1)
	grandchild := child.Replies[0]
	assert.Equal(t, "grandchild", grandchild.ID)
	assert.Equal(t, 2, grandchild.Depth)
	require.NotNil(t, grandchild.ParentAuthor)
	assert.Equal(t, "bob", grandchild.ParentAuthor.ID)
}

func TestBuildCommentTreeFlattensBeyondCap(t *testing.T) {
	base := time.Now()
	// great-grandchild replies to the depth-2 grandchild, so its stored depth
	// is clamped to 2 and the tree re-homes it under the grandchild's parent's
	// nearest sub-cap ancestor, which is the depth-1 child
	comments := []*model.Comment{
		makeComment("root", "item1", "alice", nil, 0, base),
		makeComment("child", "item1", "bob", strPtr("root"), 1, base.Add(time.Minute)),
		makeComment("grandchild", "item1", "carol", strPtr("child"), 2, base.Add(2*time.Minute)),
		makeComment("greatgrandchild", "item1", "dave", strPtr("grandchild"), 2, base.Add(3*time.Minute)),
	}

	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	child := roots[0].Replies[0]
	require.Len(t, child.Replies, 2)

	grandchild := child.Replies[0]
	assert.Equal(t, "grandchild", grandchild.ID)
	assert.Empty(t, grandchild.Replies)

	rehomed := child.Replies[1]
	assert.Equal(t, "greatgrandchild", rehomed.ID)
	assert.Equal(t, 2, rehomed.Depth)

	// ParentAuthor still names the literal parent, not the attachment parent
	require.NotNil(t, rehomed.ParentAuthor)
	assert.Equal(t, "carol", rehomed.ParentAuthor.ID)
}

func TestBuildCommentTreeLongChainStaysWithinCap(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("c0", "item1", "u0", nil, 0, base),
	}
	// chain of replies, each to the previous one
	for i := 1; i < 8; i++ {
		depth := i
		if depth > model.MaxCommentDepth {
			depth = model.MaxCommentDepth
		}
		parent := fmt.Sprintf("c%d", i-1)
		comments = append(comments, makeComment(
			fmt.Sprintf("c%d", i), "item1", fmt.Sprintf("u%d", i),
			strPtr(parent), depth, base.Add(time.Duration(i)*time.Minute),
		))
	}

	roots := BuildCommentTree(comments)
	require.Len(t, roots, 1)

	var maxDepth int
	var walk func(node *CommentNode, level int)
	walk = func(node *CommentNode, level int) {
		assert.LessOrEqual(t, node.Depth, model.MaxCommentDepth)
		if level > maxDepth {
			maxDepth = level
		}
		for _, reply := range node.Replies {
			walk(reply, level+1)
		}
	}
	walk(roots[0], 0)

	assert.Equal(t, model.MaxCommentDepth, maxDepth)

	// every comment is still present exactly once
	seen := map[string]bool{}
	var count func(node *CommentNode)
	count = func(node *CommentNode) {
		assert.False(t, seen[node.ID])
		seen[node.ID] = true
		for _, reply := range node.Replies {
			count(reply)
		}
	}
	count(roots[0])
	assert.Len(t, seen, len(comments))
}

func TestBuildCommentTreeMissingParentBecomesRoot(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("orphan", "item1", "bob", strPtr("deleted-parent"), 1, base),
	}

	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	assert.Equal(t, "orphan", roots[0].ID)
	assert.Nil(t, roots[0].ParentAuthor)
}

func TestBuildCommentTreePreservesSiblingOrder(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("root", "item1", "alice", nil, 0, base),
		makeComment("r1", "item1", "bob", strPtr("root"), 1, base.Add(time.Minute)),
		makeComment("r2", "item1", "carol", strPtr("root"), 1, base.Add(2*time.Minute)),
		makeComment("r3", "item1", "dave", strPtr("root"), 1, base.Add(3*time.Minute)),
	}

	roots := BuildCommentTree(comments)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 3)
	assert.Equal(t, "r1", roots[0].Replies[0].ID)
	assert.Equal(t, "r2", roots[0].Replies[1].ID)
	assert.Equal(t, "r3", roots[0].Replies[2].ID)
}

func TestBuildCommentTreeDeterministic(t *testing.T) {
	base := time.Now()
	comments := []*model.Comment{
		makeComment("root", "item1", "alice", nil, 0, base),
		makeComment("child", "item1", "bob", strPtr("root"), 1, base.Add(time.Minute)),
		makeComment("grandchild", "item1", "carol", strPtr("child"), 2, base.Add(2*time.Minute)),
		makeComment("deep", "item1", "dave", strPtr("grandchild"), 2, base.Add(3*time.Minute)),
	}

	first := BuildCommentTree(comments)
	second := BuildCommentTree(comments)

	assert.Equal(t, first, second)

	// input order and fields are untouched
	assert.Equal(t, "root", comments[0].ID)
	assert.Equal(t, 2, comments[3].Depth)
}

func TestBuildCommentTreeOmitsAuthorWhenNotLoaded(t *testing.T) {
	comment := makeComment("c1", "item1", "alice", nil, 0, time.Now())
	comment.Author = model.User{}

	roots := BuildCommentTree([]*model.Comment{comment})

	require.Len(t, roots, 1)
	assert.Nil(t, roots[0].Author)
}
