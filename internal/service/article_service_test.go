package service

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func TestArticleService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "writer@example.com", "writer")
	golang, err := f.tags.Create(ctx, "go", "")
	require.NoError(t, err)

	article, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{
		Title:   "  Hello  ",
		Content: "body",
		Status:  domain.ArticleStatusPublished,
		TagIDs:  []int64{golang.ID, golang.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", article.Title)
	assert.True(t, article.Published)
	assert.NotNil(t, article.PublishAt)
	assert.Equal(t, author.ID, article.AuthorID)
	assert.Contains(t, f.events.types(), events.EventArticlePublished)

	got, err := f.articles.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "go", got.Tags[0].Name)

	got, err = f.articles.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	_, err = f.articles.Get(ctx, 9999)
	de := assertDomainError(t, err, http.StatusNotFound, apperrors.CodeArticleNotFound)
	assert.Equal(t, "Article not found", de.Message)
}

func TestArticleService_CreateDefaultsAndUnknownTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "w2@example.com", "w2")

	draft, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "d", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStatusDraft, draft.Status)
	assert.False(t, draft.Published)
	assert.Nil(t, draft.PublishAt)
	assert.NotContains(t, f.events.types(), events.EventArticlePublished)

	_, err = f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "x", Content: "c", TagIDs: []int64{404}})
	de := assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)
	assert.Equal(t, []int64{404}, de.Details["tagIds"])

	_, err = f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "x", Content: "c", Status: "LIVE"})
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func TestArticleService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "w3@example.com", "w3")
	a, err := f.tags.Create(ctx, "a", "#000000")
	require.NoError(t, err)
	b, err := f.tags.Create(ctx, "b", "#ffffff")
	require.NoError(t, err)

	article, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "t", Content: "c", TagIDs: []int64{a.ID}})
	require.NoError(t, err)

	title := "new title"
	updated, err := f.articles.Update(ctx, author.ID, article.ID, ArticleUpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	require.Len(t, updated.Tags, 1, "tags are kept when not supplied")
	assert.Equal(t, "a", updated.Tags[0].Name)

	published := domain.ArticleStatusPublished
	updated, err = f.articles.Update(ctx, author.ID, article.ID, ArticleUpdateInput{Status: &published, TagIDs: []int64{b.ID}})
	require.NoError(t, err)
	assert.True(t, updated.Published)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "b", updated.Tags[0].Name)
	assert.Contains(t, f.events.types(), events.EventArticlePublished)

	updated, err = f.articles.Update(ctx, author.ID, article.ID, ArticleUpdateInput{TagIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)

	_, err = f.articles.Update(ctx, author.ID, 9999, ArticleUpdateInput{Title: &title})
	assertDomainError(t, err, http.StatusNotFound, apperrors.CodeArticleNotFound)
}

func TestArticleService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "w4@example.com", "w4")
	admin := &domain.User{ID: author.ID, Role: domain.RoleAdmin}
	tag, err := f.tags.Create(ctx, "news", "")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		input := ArticleCreateInput{Title: "p", Content: "c", Status: domain.ArticleStatusPublished}
		if i%4 == 0 {
			input.TagIDs = []int64{tag.ID}
		}
		_, err := f.articles.Create(ctx, author.ID, input)
		require.NoError(t, err)
	}
	_, err = f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "draft", Content: "c"})
	require.NoError(t, err)

	page, err := f.articles.List(ctx, nil, ArticleListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Len(t, page.Items, DefaultPageSize)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.articles.List(ctx, nil, ArticleListQuery{Page: 2, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = f.articles.List(ctx, nil, ArticleListQuery{Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Size)

	page, err = f.articles.List(ctx, nil, ArticleListQuery{Tag: "news"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	_, err = f.articles.List(ctx, nil, ArticleListQuery{Status: domain.ArticleStatusDraft})
	assertDomainError(t, err, http.StatusForbidden, apperrors.CodeInsufficientPermissions)

	_, err = f.articles.List(ctx, author, ArticleListQuery{Status: domain.ArticleStatusDraft})
	assertDomainError(t, err, http.StatusForbidden, apperrors.CodeInsufficientPermissions)

	page, err = f.articles.List(ctx, admin, ArticleListQuery{Status: domain.ArticleStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestArticleService_DeleteAndOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := register(t, f, "w5@example.com", "w5")
	article, err := f.articles.Create(ctx, author.ID, ArticleCreateInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	owner, err := f.articles.OwnerOf(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, owner)

	require.NoError(t, f.articles.Delete(ctx, article.ID))
	err = f.articles.Delete(ctx, article.ID)
	assertDomainError(t, err, http.StatusNotFound, apperrors.CodeArticleNotFound)
}

func TestArticleService_ListPageOutOfRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.articles.List(context.Background(), nil, ArticleListQuery{Page: math.MaxInt, Size: 10})
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	page, err := f.articles.List(context.Background(), nil, ArticleListQuery{Page: math.MaxInt / MaxPageSize, Size: MaxPageSize})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
