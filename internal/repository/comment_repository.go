package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-service/internal/domain"
)

// CommentRepository manages comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByArticle(ctx context.Context, articleID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (content, article_id, user_id, parent_id, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.Content,
		comment.ArticleID,
		comment.UserID,
		comment.ParentID,
		comment.Status,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `
        UPDATE comments SET content=$1, status=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, comment.Content, comment.Status, comment.ID).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	const query = `
        SELECT id, content, article_id, user_id, parent_id, status, created_at, updated_at
        FROM comments WHERE id=$1`
	var c domain.Comment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Content,
		&c.ArticleID,
		&c.UserID,
		&c.ParentID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepository) ListByArticle(ctx context.Context, articleID int64) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.content, c.article_id, c.user_id, c.parent_id, c.status, c.created_at, c.updated_at,
               u.username, u.nickname
        FROM comments c JOIN users u ON u.id = c.user_id
        WHERE c.article_id=$1
        ORDER BY c.created_at, c.id`
	rows, err := r.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Comment, error) {
		c := domain.Comment{Author: &domain.CommentAuthor{}}
		err := row.Scan(
			&c.ID,
			&c.Content,
			&c.ArticleID,
			&c.UserID,
			&c.ParentID,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.Author.Username,
			&c.Author.Nickname,
		)
		c.Author.ID = c.UserID
		return c, err
	})
}
