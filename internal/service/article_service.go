package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ArticleService coordinates article workflows.
type ArticleService struct {
	articles   repository.ArticleRepository
	tags       repository.TagRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ArticleDependencies bundles repositories for the article service.
type ArticleDependencies struct {
	ArticleRepo repository.ArticleRepository
	TagRepo     repository.TagRepository
	Dispatcher  events.Dispatcher
}

// ArticleCreateInput describes a new article. An empty Status means DRAFT.
type ArticleCreateInput struct {
	Title   string
	Content string
	Excerpt *string
	Cover   *string
	Status  domain.ArticleStatus
	TagIDs  []int64
}

// ArticleUpdateInput carries partial changes. A nil TagIDs keeps the
// current tags; an empty slice clears them.
type ArticleUpdateInput struct {
	Title   *string
	Content *string
	Excerpt *string
	Cover   *string
	Status  *domain.ArticleStatus
	TagIDs  []int64
}

// ArticleListQuery describes listing parameters as received from the client.
type ArticleListQuery struct {
	Page   int
	Size   int
	Tag    string
	Status domain.ArticleStatus
}

// ArticlePage is one page of a listing.
type ArticlePage struct {
	Items      []domain.Article
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// NewArticleService constructs the service.
func NewArticleService(deps ArticleDependencies) *ArticleService {
	return &ArticleService{
		articles:   deps.ArticleRepo,
		tags:       deps.TagRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// List returns a page of articles, newest first. Only admins may list
// statuses other than PUBLISHED.
func (s *ArticleService) List(ctx context.Context, viewer *domain.User, query ArticleListQuery) (*ArticlePage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.Size
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > math.MaxInt/size {
		return nil, apperrors.NewValidationError("invalid page", map[string]any{"page": "page is out of range"})
	}

	status := query.Status
	if status == "" {
		status = domain.ArticleStatusPublished
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	if status != domain.ArticleStatusPublished && !viewer.IsAdmin() {
		return nil, apperrors.NewForbidden(apperrors.CodeInsufficientPermissions, "Insufficient permissions", map[string]any{
			"required": []string{string(domain.RoleAdmin)},
			"current":  roleOf(viewer),
		})
	}

	items, total, err := s.articles.List(ctx, repository.ArticleFilter{
		Status: status,
		Tag:    strings.TrimSpace(query.Tag),
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &ArticlePage{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// Get loads an article and counts the view.
func (s *ArticleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, articleLookupError(err)
	}
	if err := s.articles.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	article.Views++
	return article, nil
}

// Create stores a new article owned by authorID.
func (s *ArticleService) Create(ctx context.Context, authorID int64, input ArticleCreateInput) (*domain.Article, error) {
	status := input.Status
	if status == "" {
		status = domain.ArticleStatusDraft
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	tagIDs, err := s.checkTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		Excerpt:  input.Excerpt,
		Cover:    input.Cover,
		AuthorID: authorID,
	}
	s.applyStatus(article, status)

	if err := s.articles.Create(ctx, article, tagIDs); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	if article.Published {
		s.publishArticle(ctx, authorID, article)
	}
	return article, nil
}

// Update applies partial changes, replacing the tag set when given.
func (s *ArticleService) Update(ctx context.Context, actorID, id int64, input ArticleUpdateInput) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, articleLookupError(err)
	}
	wasPublished := article.Published

	if input.Title != nil {
		article.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Excerpt != nil {
		article.Excerpt = input.Excerpt
	}
	if input.Cover != nil {
		article.Cover = input.Cover
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(*input.Status)})
		}
		s.applyStatus(article, *input.Status)
	}

	tagIDs := make([]int64, 0, len(article.Tags))
	for _, tag := range article.Tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if input.TagIDs != nil {
		if tagIDs, err = s.checkTags(ctx, input.TagIDs); err != nil {
			return nil, err
		}
	}

	if err := s.articles.Update(ctx, article, tagIDs); err != nil {
		return nil, articleLookupError(err)
	}
	updated, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, articleLookupError(err)
	}
	if updated.Published && !wasPublished {
		s.publishArticle(ctx, actorID, updated)
	}
	return updated, nil
}

// Delete removes an article and, through cascade, its comments.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return articleLookupError(err)
	}
	return nil
}

// OwnerOf returns the author id; it satisfies auth.OwnerLookup.
func (s *ArticleService) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.articles.GetAuthorID(ctx, id)
}

func (s *ArticleService) applyStatus(article *domain.Article, status domain.ArticleStatus) {
	article.Status = status
	article.Published = status == domain.ArticleStatusPublished
	if article.Published && article.PublishAt == nil {
		now := s.now().UTC()
		article.PublishAt = &now
	}
}

// checkTags dedupes ids and rejects any that do not exist.
func (s *ArticleService) checkTags(ctx context.Context, ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return unique, nil
	}

	found, err := s.tags.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if len(found) == len(unique) {
		return unique, nil
	}

	known := make(map[int64]struct{}, len(found))
	for _, tag := range found {
		known[tag.ID] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range unique {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return nil, apperrors.NewValidationError("unknown tags", map[string]any{"tagIds": missing})
}

func (s *ArticleService) publishArticle(ctx context.Context, actorID int64, article *domain.Article) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventArticlePublished,
		ActorID: actorID,
		Payload: events.ArticlePublishedPayload{ArticleID: article.ID, AuthorID: article.AuthorID, Title: article.Title},
	})
}

func articleLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundCode(apperrors.CodeArticleNotFound, "Article not found")
	}
	return fmt.Errorf("article: %w", err)
}

func roleOf(user *domain.User) any {
	if user == nil {
		return nil
	}
	return string(user.Role)
}
