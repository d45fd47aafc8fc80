package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"Agora/internal/core/users"
)

// MaxBatchSize bounds the number of ids accepted by batch lookups
const MaxBatchSize = 1000

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.Repository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	query := `
		INSERT INTO users (id, username, avatar)
		VALUES ($1, $2, $3)
		RETURNING id, username, avatar, created_at`

	created := &users.User{}
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Username, user.Avatar).
		Scan(&created.ID, &created.Username, &created.Avatar, &created.CreatedAt)
	if err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok {
			if constraint == "users_username_key" {
				return nil, users.ErrUsernameTaken
			}
			return nil, users.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	user := &users.User{}
	query := `SELECT id, username, avatar, created_at FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Avatar, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByIDs retrieves multiple users in a single query
// Missing users are not included in the result map
func (r *postgresUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*users.User, error) {
	if len(ids) == 0 {
		return make(map[string]*users.User), nil
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds maximum %d", len(ids), MaxBatchSize)
	}

	query := `SELECT id, username, avatar, created_at FROM users WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	defer closeRows(ctx, rows)

	result := make(map[string]*users.User, len(ids))
	for rows.Next() {
		user := &users.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Avatar, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		result[user.ID] = user
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return result, nil
}

// GetFollowing returns the followee ids of a user.
// The LEFT JOIN yields one row with a NULL followee for users who follow
// nobody, and no rows at all for unknown users.
func (r *postgresUserRepo) GetFollowing(ctx context.Context, id string) ([]string, error) {
	query := `
		SELECT u.id, f.followee_id
		FROM users u
		LEFT JOIN follows f ON f.follower_id = u.id
		WHERE u.id = $1
		ORDER BY f.followee_id`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query following: %w", err)
	}
	defer closeRows(ctx, rows)

	found := false
	following := []string{}
	for rows.Next() {
		var userID string
		var followee sql.NullString
		if err := rows.Scan(&userID, &followee); err != nil {
			return nil, fmt.Errorf("failed to scan follow row: %w", err)
		}
		found = true
		if followee.Valid {
			following = append(following, followee.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follow rows: %w", err)
	}

	if !found {
		return nil, users.ErrUserNotFound
	}
	return following, nil
}

// Follow records a follow edge; following twice is a no-op
func (r *postgresUserRepo) Follow(ctx context.Context, followerID, followeeID string) error {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return users.ErrUserNotFound
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

// Unfollow removes a follow edge if present
func (r *postgresUserRepo) Unfollow(ctx context.Context, followerID, followeeID string) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// closeRows closes a result set, logging close errors
func closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close rows")
	}
}
