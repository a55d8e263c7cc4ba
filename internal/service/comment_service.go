package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const commentPreviewLen = 80

// CommentService coordinates comment workflows.
type CommentService struct {
	comments   repository.CommentRepository
	articles   repository.ArticleRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	ArticleRepo repository.ArticleRepository
	Dispatcher  events.Dispatcher
}

// CommentCreateInput describes a new comment.
type CommentCreateInput struct {
	ArticleID int64
	Content   string
	ParentID  *int64
}

// CommentUpdateInput carries edits. Status may only be changed by admins.
type CommentUpdateInput struct {
	Content *string
	Status  *domain.CommentStatus
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		articles:   deps.ArticleRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create adds an APPROVED comment to an existing article.
func (s *CommentService) Create(ctx context.Context, userID int64, input CommentCreateInput) (*domain.Comment, error) {
	articleAuthorID, err := s.articles.GetAuthorID(ctx, input.ArticleID)
	if err != nil {
		return nil, articleLookupError(err)
	}
	if input.ParentID != nil {
		if err := s.checkParent(ctx, input.ArticleID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	comment := &domain.Comment{
		Content:   strings.TrimSpace(input.Content),
		ArticleID: input.ArticleID,
		UserID:    userID,
		ParentID:  input.ParentID,
		Status:    domain.CommentStatusApproved,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventCommentCreated,
			ActorID: userID,
			Payload: events.CommentCreatedPayload{
				CommentID:       comment.ID,
				ArticleID:       comment.ArticleID,
				ArticleAuthorID: articleAuthorID,
				BodyPreview:     preview(comment.Content),
			},
		})
	}
	return comment, nil
}

// ListByArticle returns an article's comments, oldest first, with authors.
func (s *CommentService) ListByArticle(ctx context.Context, articleID int64) ([]domain.Comment, error) {
	if _, err := s.articles.GetAuthorID(ctx, articleID); err != nil {
		return nil, articleLookupError(err)
	}
	comments, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update edits a comment on behalf of actor.
func (s *CommentService) Update(ctx context.Context, actor *domain.User, id int64, input CommentUpdateInput) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, commentLookupError(err)
	}
	if input.Content != nil {
		comment.Content = strings.TrimSpace(*input.Content)
	}
	if input.Status != nil && *input.Status != comment.Status {
		if !actor.IsAdmin() {
			return nil, apperrors.NewForbidden(apperrors.CodeInsufficientPermissions, "Only admins can moderate comments", map[string]any{
				"required": []string{string(domain.RoleAdmin)},
				"current":  roleOf(actor),
			})
		}
		comment.Status = *input.Status
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, commentLookupError(err)
	}
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id int64) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return commentLookupError(err)
	}
	return nil
}

// OwnerOf returns the commenter id; it satisfies auth.OwnerLookup.
func (s *CommentService) OwnerOf(ctx context.Context, id int64) (int64, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return comment.UserID, nil
}

func commentLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundCode(apperrors.CodeCommentNotFound, "Comment not found")
	}
	return fmt.Errorf("comment: %w", err)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= commentPreviewLen {
		return s
	}
	return string([]rune(s)[:commentPreviewLen]) + "..."
}

// checkParent requires a reply's parent to exist on the same article.
func (s *CommentService) checkParent(ctx context.Context, articleID, parentID int64) error {
	parent, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Parent comment not found", map[string]any{"parentId": "parent comment does not exist"})
		}
		return fmt.Errorf("load parent comment: %w", err)
	}
	if parent.ArticleID != articleID {
		return apperrors.NewValidationError("Parent comment belongs to another article", map[string]any{"parentId": "parent comment belongs to another article"})
	}
	return nil
}
