// Package repotest provides in-memory repository implementations for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
)

// Store holds the shared state behind the fake repositories so that joins
// (comment authors, activity counts) behave like the database.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	failWith error

	users    map[int64]domain.User
	articles map[int64]articleRow
	tags     map[int64]domain.Tag
	comments map[int64]domain.Comment
}

type articleRow struct {
	article domain.Article
	tagIDs  []int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		articles: make(map[int64]articleRow),
		tags:     make(map[int64]domain.Tag),
		comments: make(map[int64]domain.Comment),
	}
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Articles() repository.ArticleRepository { return articleRepo{s} }
func (s *Store) Tags() repository.TagRepository         { return tagRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

// lock acquires the mutex and reports the injected failure, if any.
func (s *Store) lock() error {
	s.mu.Lock()
	return s.failWith
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return uniqueViolation("users_email_key")
		}
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	now := time.Now().UTC()
	user.ID = r.s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now().UTC()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Touch(_ context.Context, id int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	var found *domain.User
	for _, u := range r.s.users {
		if u.Email == email || u.Username == username {
			if found == nil || u.ID < found.ID {
				match := u
				found = &match
			}
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

func (r userRepo) CountActivity(_ context.Context, id int64) (int64, int64, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return 0, 0, err
	}
	var articles, comments int64
	for _, row := range r.s.articles {
		if row.article.AuthorID == id && row.article.Published {
			articles++
		}
	}
	for _, c := range r.s.comments {
		if c.UserID == id {
			comments++
		}
	}
	return articles, comments, nil
}

type articleRepo struct{ s *Store }

func (r articleRepo) Create(_ context.Context, article *domain.Article, tagIDs []int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	now := time.Now().UTC()
	article.ID = r.s.id()
	article.Views = 0
	article.CreatedAt, article.UpdatedAt = now, now
	article.Tags = r.s.resolveTags(tagIDs)
	r.s.articles[article.ID] = articleRow{article: *article, tagIDs: append([]int64(nil), tagIDs...)}
	return nil
}

func (r articleRepo) Update(_ context.Context, article *domain.Article, tagIDs []int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	existing, ok := r.s.articles[article.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	article.Views = existing.article.Views
	article.AuthorID = existing.article.AuthorID
	article.CreatedAt = existing.article.CreatedAt
	article.UpdatedAt = time.Now().UTC()
	article.Tags = r.s.resolveTags(tagIDs)
	r.s.articles[article.ID] = articleRow{article: *article, tagIDs: append([]int64(nil), tagIDs...)}
	return nil
}

func (r articleRepo) Delete(_ context.Context, id int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	if _, ok := r.s.articles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.articles, id)
	for cid, c := range r.s.comments {
		if c.ArticleID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r articleRepo) GetByID(_ context.Context, id int64) (*domain.Article, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	row, ok := r.s.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	article := row.article
	article.Tags = r.s.resolveTags(row.tagIDs)
	return &article, nil
}

func (r articleRepo) GetAuthorID(_ context.Context, id int64) (int64, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return 0, err
	}
	row, ok := r.s.articles[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return row.article.AuthorID, nil
}

func (r articleRepo) IncrementViews(_ context.Context, id int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	if row, ok := r.s.articles[id]; ok {
		row.article.Views++
		r.s.articles[id] = row
	}
	return nil
}

func (r articleRepo) List(_ context.Context, filter repository.ArticleFilter) ([]domain.Article, int64, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, 0, err
	}
	matched := make([]domain.Article, 0)
	for _, row := range r.s.articles {
		if filter.Status != "" && row.article.Status != filter.Status {
			continue
		}
		article := row.article
		article.Tags = r.s.resolveTags(row.tagIDs)
		if filter.Tag != "" && !hasTag(article.Tags, filter.Tag) {
			continue
		}
		matched = append(matched, article)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := min(max(filter.Offset, 0), len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func hasTag(tags []domain.Tag, name string) bool {
	for _, t := range tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) resolveTags(ids []int64) []domain.Tag {
	out := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		if tag, ok := s.tags[id]; ok {
			out = append(out, tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type tagRepo struct{ s *Store }

func (r tagRepo) Create(_ context.Context, tag *domain.Tag) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	for _, t := range r.s.tags {
		if t.Name == tag.Name {
			return uniqueViolation("tags_name_key")
		}
	}
	tag.ID = r.s.id()
	tag.CreatedAt = time.Now().UTC()
	r.s.tags[tag.ID] = *tag
	return nil
}

func (r tagRepo) List(_ context.Context) ([]domain.Tag, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(r.s.tags))
	for id := range r.s.tags {
		ids = append(ids, id)
	}
	return r.s.resolveTags(ids), nil
}

func (r tagRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Tag, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	return r.s.resolveTags(ids), nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	if _, ok := r.s.articles[comment.ArticleID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "comments_article_id_fkey"}
	}
	if comment.ParentID != nil {
		if _, ok := r.s.comments[*comment.ParentID]; !ok {
			return &pgconn.PgError{Code: "23503", ConstraintName: "comments_parent_id_fkey"}
		}
	}
	now := time.Now().UTC()
	comment.ID = r.s.id()
	comment.CreatedAt, comment.UpdatedAt = now, now
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r commentRepo) Update(_ context.Context, comment *domain.Comment) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	existing, ok := r.s.comments[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Content = comment.Content
	existing.Status = comment.Status
	existing.UpdatedAt = time.Now().UTC()
	r.s.comments[comment.ID] = existing
	comment.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r commentRepo) Delete(_ context.Context, id int64) error {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return err
	}
	if _, ok := r.s.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	c, ok := r.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r commentRepo) ListByArticle(_ context.Context, articleID int64) ([]domain.Comment, error) {
	defer r.s.mu.Unlock()
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0)
	for _, c := range r.s.comments {
		if c.ArticleID != articleID {
			continue
		}
		if u, ok := r.s.users[c.UserID]; ok {
			c.Author = &domain.CommentAuthor{ID: u.ID, Username: u.Username, Nickname: u.Nickname}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
