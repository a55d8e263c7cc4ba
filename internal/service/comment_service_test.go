package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func TestCommentService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "ann@example.com", "ann")
	reader := register(t, f, "ben@example.com", "ben")
	admin := &domain.User{ID: 99, Role: domain.RoleAdmin}

	article, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	comment, err := f.comments.Create(ctx, reader.ID, CommentCreateInput{ArticleID: article.ID, Content: " nice "})
	require.NoError(t, err)
	assert.Equal(t, "nice", comment.Content)
	assert.Equal(t, domain.CommentStatusApproved, comment.Status)
	assert.Contains(t, f.events.types(), events.EventCommentCreated)

	parent := comment.ID
	reply, err := f.comments.Create(ctx, author.ID, CommentCreateInput{ArticleID: article.ID, Content: "thanks", ParentID: &parent})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent, *reply.ParentID)

	_, err = f.comments.Create(ctx, reader.ID, CommentCreateInput{ArticleID: 9999, Content: "x"})
	assertDomainError(t, err, http.StatusNotFound, apperrors.CodeArticleNotFound)

	list, err := f.comments.ListByArticle(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, "ben", list[0].Author.Username)
	assert.Equal(t, reader.ID, list[0].Author.ID)

	owner, err := f.comments.OwnerOf(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, reader.ID, owner)

	content := "edited"
	updated, err := f.comments.Update(ctx, reader, comment.ID, CommentUpdateInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	rejected := domain.CommentStatusRejected
	_, err = f.comments.Update(ctx, reader, comment.ID, CommentUpdateInput{Status: &rejected})
	assertDomainError(t, err, http.StatusForbidden, apperrors.CodeInsufficientPermissions)

	updated, err = f.comments.Update(ctx, admin, comment.ID, CommentUpdateInput{Status: &rejected})
	require.NoError(t, err)
	assert.Equal(t, domain.CommentStatusRejected, updated.Status)

	require.NoError(t, f.comments.Delete(ctx, comment.ID))
	err = f.comments.Delete(ctx, comment.ID)
	assertDomainError(t, err, http.StatusNotFound, apperrors.CodeCommentNotFound)
}

func TestCommentService_ReplyParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "cy@example.com", "cy")

	first, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "one", Content: "c"})
	require.NoError(t, err)
	second, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "two", Content: "c"})
	require.NoError(t, err)

	root, err := f.comments.Create(ctx, author.ID, CommentCreateInput{ArticleID: first.ID, Content: "root"})
	require.NoError(t, err)

	missing := int64(424242)
	_, err = f.comments.Create(ctx, author.ID, CommentCreateInput{ArticleID: first.ID, Content: "x", ParentID: &missing})
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	_, err = f.comments.Create(ctx, author.ID, CommentCreateInput{ArticleID: second.ID, Content: "x", ParentID: &root.ID})
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	list, err := f.comments.ListByArticle(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("é", commentPreviewLen+5)
	assert.Equal(t, strings.Repeat("é", commentPreviewLen)+"...", preview(long))
}
