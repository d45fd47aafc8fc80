package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"Agora/internal/core/posts"
)

// postSortClauses maps sort orders to safe SQL ORDER BY clauses.
// The id tie-break keeps OFFSET pagination stable between requests.
var postSortClauses = map[posts.SortOrder]string{
	posts.SortNewest: `p.created_at DESC, p.id DESC`,
	posts.SortOldest: `p.created_at ASC, p.id ASC`,
}

const postColumns = `p.id, p.author_id, p.content, p.likes, p.created_at, p.deleted_at`

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a new post into the posts table
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}

	query := `
		INSERT INTO posts (id, author_id, content, likes, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Content, pq.Array(likes), post.CreatedAt)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return fmt.Errorf("post already exists: %s", post.ID)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a live post
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1 AND p.deleted_at IS NULL`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return post, nil
}

// Find executes a Query as one SELECT
func (r *postgresPostRepo) Find(ctx context.Context, q posts.Query) ([]*posts.Post, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	orderBy, ok := postSortClauses[q.Sort]
	if !ok {
		return nil, fmt.Errorf("unsupported sort order: %d", q.Sort)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		WHERE p.author_id = ANY($1)
			AND p.deleted_at IS NULL
		ORDER BY %s
		OFFSET $2`, postColumns, orderBy)
	args := []interface{}{pq.Array(q.Filter.AuthorIDs), q.Skip}

	if q.Limit > 0 {
		query += `
		LIMIT $3`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer closeRows(ctx, rows)

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return result, nil
}

// Count returns the number of live posts matching the filter
func (r *postgresPostRepo) Count(ctx context.Context, f posts.Filter) (int, error) {
	if len(f.AuthorIDs) == 0 {
		return 0, fmt.Errorf("count filter requires at least one author")
	}

	query := `SELECT COUNT(*) FROM posts p WHERE p.author_id = ANY($1) AND p.deleted_at IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, pq.Array(f.AuthorIDs)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// DeleteOwned soft-deletes a post in one statement that also checks ownership
func (r *postgresPostRepo) DeleteOwned(ctx context.Context, id, authorID string) (*posts.Post, error) {
	query := `
		UPDATE posts p
		SET deleted_at = NOW()
		WHERE p.id = $1 AND p.author_id = $2 AND p.deleted_at IS NULL
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, authorID))
	if err == nil {
		return post, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	// Nothing deleted: tell a missing post apart from someone else's post
	var owner string
	err = r.db.QueryRowContext(ctx,
		`SELECT author_id FROM posts WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check post owner: %w", err)
	}
	return nil, posts.ErrForbidden
}

// ToggleLike flips userID's membership in the likes array in a single UPDATE.
// Concurrent toggles on the same row serialize on the row lock and each
// re-evaluates the CASE against the latest likes value, so no duplicate
// entry can be written.
func (r *postgresPostRepo) ToggleLike(ctx context.Context, id, userID string) (*posts.Post, error) {
	query := `
		UPDATE posts p
		SET likes = CASE
			WHEN $2::text = ANY(p.likes) THEN array_remove(p.likes, $2::text)
			ELSE array_append(p.likes, $2::text)
		END
		WHERE p.id = $1 AND p.deleted_at IS NULL
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return post, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var post posts.Post
	var likes pq.StringArray
	var deletedAt sql.NullTime

	if err := row.Scan(&post.ID, &post.AuthorID, &post.Content, &likes, &post.CreatedAt, &deletedAt); err != nil {
		return nil, err
	}

	post.Likes = []string(likes)
	if post.Likes == nil {
		post.Likes = []string{}
	}
	post.CreatedAt = post.CreatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		post.DeletedAt = &t
	}
	return &post, nil
}
