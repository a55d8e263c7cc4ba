package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-service/internal/domain"
)

// ArticleFilter captures listing parameters.
type ArticleFilter struct {
	Status domain.ArticleStatus
	Tag    string
	Limit  int
	Offset int
}

// ArticleRepository encapsulates article persistence.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article, tagIDs []int64) error
	Update(ctx context.Context, article *domain.Article, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	GetAuthorID(ctx context.Context, id int64) (int64, error)
	IncrementViews(ctx context.Context, id int64) error
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, int64, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleColumns = `a.id, a.title, a.content, a.excerpt, a.cover, a.status, a.published, a.publish_at,
               a.views, a.author_id, a.created_at, a.updated_at`

func (r *articleRepository) Create(ctx context.Context, article *domain.Article, tagIDs []int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO articles (title, content, excerpt, cover, status, published, publish_at, author_id)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, views, created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			article.Title,
			article.Content,
			article.Excerpt,
			article.Cover,
			article.Status,
			article.Published,
			article.PublishAt,
			article.AuthorID,
		).Scan(&article.ID, &article.Views, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return err
		}
		return insertArticleTags(ctx, tx, article.ID, tagIDs)
	})
}

// Update rewrites the article and replaces its tag set in one transaction.
func (r *articleRepository) Update(ctx context.Context, article *domain.Article, tagIDs []int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
            UPDATE articles SET title=$1, content=$2, excerpt=$3, cover=$4, status=$5, published=$6,
                publish_at=$7, updated_at=NOW()
            WHERE id=$8
            RETURNING views, author_id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			article.Title,
			article.Content,
			article.Excerpt,
			article.Cover,
			article.Status,
			article.Published,
			article.PublishAt,
			article.ID,
		).Scan(&article.Views, &article.AuthorID, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id=$1`, article.ID); err != nil {
			return err
		}
		return insertArticleTags(ctx, tx, article.ID, tagIDs)
	})
}

func insertArticleTags(ctx context.Context, tx pgx.Tx, articleID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO article_tags (article_id, tag_id)
        SELECT $1, UNNEST($2::bigint[])
        ON CONFLICT DO NOTHING`, articleID, tagIDs)
	return err
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	var article domain.Article
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles a WHERE a.id=$1`, id)
	if err := scanArticle(row, &article); err != nil {
		return nil, err
	}
	tags, err := r.tagsFor(ctx, []int64{article.ID})
	if err != nil {
		return nil, err
	}
	article.Tags = tags[article.ID]
	return &article, nil
}

func (r *articleRepository) GetAuthorID(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	if err := r.pool.QueryRow(ctx, `SELECT author_id FROM articles WHERE id=$1`, id).Scan(&authorID); err != nil {
		return 0, err
	}
	return authorID, nil
}

func (r *articleRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE articles SET views = views + 1 WHERE id=$1`, id)
	return err
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.Article, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}
	idx := 1

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("a.status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Tag != "" {
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
                SELECT 1 FROM article_tags atg JOIN tags t ON t.id = atg.tag_id
                WHERE atg.article_id = a.id AND t.name = $%d)`, idx))
		args = append(args, filter.Tag)
		idx++
	}
	where := " WHERE " + strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + articleColumns + ` FROM articles a` + where +
		fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]domain.Article, 0, filter.Limit)
	ids := make([]int64, 0, filter.Limit)
	for rows.Next() {
		var article domain.Article
		if err := scanArticle(rows, &article); err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
		ids = append(ids, article.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range articles {
		articles[i].Tags = tags[articles[i].ID]
	}
	return articles, total, nil
}

func (r *articleRepository) tagsFor(ctx context.Context, articleIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(articleIDs))
	if len(articleIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT atg.article_id, t.id, t.name, t.color, t.created_at
        FROM article_tags atg JOIN tags t ON t.id = atg.tag_id
        WHERE atg.article_id = ANY($1)
        ORDER BY t.name`, articleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID int64
		var tag domain.Tag
		if err := rows.Scan(&articleID, &tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result[articleID] = append(result[articleID], tag)
	}
	return result, rows.Err()
}

func scanArticle(row pgx.Row, article *domain.Article) error {
	return row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Excerpt,
		&article.Cover,
		&article.Status,
		&article.Published,
		&article.PublishAt,
		&article.Views,
		&article.AuthorID,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
}
