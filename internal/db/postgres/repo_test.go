package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/core/users"
)

// setupTestDB creates a test database connection and runs migrations.
// Tests are skipped when TEST_DATABASE_URL is not set.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, Migrate(context.Background(), db), "Failed to run migrations")

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM posts WHERE author_id IN (SELECT id FROM users WHERE username LIKE 'pgtest_%')`)
		_, _ = db.Exec(`DELETE FROM users WHERE username LIKE 'pgtest_%'`)
		_ = db.Close()
	})
	return db
}

// createTestUser inserts a user with a unique test username
func createTestUser(t *testing.T, repo users.Repository, name string) *users.User {
	t.Helper()

	id := posts.NewID()
	user, err := repo.Create(context.Background(), &users.User{
		ID:       id,
		Username: fmt.Sprintf("pgtest_%s_%s", name, id[len(id)-8:]),
	})
	require.NoError(t, err)
	return user
}

func createTestPost(t *testing.T, repo posts.Repository, authorID string, at time.Time) *posts.Post {
	t.Helper()

	post := &posts.Post{
		ID:        posts.NewID(),
		AuthorID:  authorID,
		Content:   "hello from " + authorID,
		CreatedAt: at.UTC().Truncate(time.Millisecond),
		Likes:     []string{},
	}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func TestUserRepo_CreateAndFollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	t.Run("Duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, &users.User{ID: posts.NewID(), Username: alice.Username})
		assert.ErrorIs(t, err, users.ErrUsernameTaken)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		_, err := repo.Create(ctx, &users.User{ID: alice.ID, Username: alice.Username + "x"})
		assert.ErrorIs(t, err, users.ErrUserExists)
	})

	t.Run("Follow is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
		require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

		following, err := repo.GetFollowing(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{bob.ID}, following)
	})

	t.Run("Follow unknown user", func(t *testing.T) {
		err := repo.Follow(ctx, alice.ID, posts.NewID())
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("Unfollow", func(t *testing.T) {
		require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
		following, err := repo.GetFollowing(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, following)
	})

	t.Run("Following of unknown user", func(t *testing.T) {
		_, err := repo.GetFollowing(ctx, posts.NewID())
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("Batch lookup skips missing", func(t *testing.T) {
		found, err := repo.GetByIDs(ctx, []string{alice.ID, bob.ID, posts.NewID()})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.Equal(t, alice.Username, found[alice.ID].Username)
	})
}

func TestPostRepo_FindOrderAndPaging(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, userRepo, "author")
	base := time.Now().Add(-time.Hour)

	var created []*posts.Post
	for i := 0; i < 5; i++ {
		created = append(created, createTestPost(t, repo, author.ID, base.Add(time.Duration(i)*time.Minute)))
	}

	filter := posts.Filter{AuthorIDs: []string{author.ID}}

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	page, err := repo.Find(ctx, posts.Query{Filter: filter, Sort: posts.SortNewest, Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[3].ID, page[0].ID)
	assert.Equal(t, created[2].ID, page[1].ID)

	all, err := repo.Find(ctx, posts.Query{Filter: filter, Sort: posts.SortOldest})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, created[0].ID, all[0].ID)
	assert.True(t, all[0].CreatedAt.Equal(created[0].CreatedAt))
}

func TestPostRepo_DeleteOwned(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, userRepo, "owner")
	other := createTestUser(t, userRepo, "other")
	post := createTestPost(t, repo, owner.ID, time.Now())

	_, err := repo.DeleteOwned(ctx, post.ID, other.ID)
	assert.ErrorIs(t, err, posts.ErrForbidden)

	stillThere, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Content, stillThere.Content)

	deleted, err := repo.DeleteOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, deleted.DeletedAt)

	_, err = repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, posts.ErrNotFound)

	_, err = repo.DeleteOwned(ctx, post.ID, owner.ID)
	assert.ErrorIs(t, err, posts.ErrNotFound)

	count, err := repo.Count(ctx, posts.Filter{AuthorIDs: []string{owner.ID}})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostRepo_ToggleLikeConcurrent(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, userRepo, "liked")
	post := createTestPost(t, repo, author.ID, time.Now())

	liker := posts.NewID()
	const toggles = 10

	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ToggleLike(ctx, post.ID, liker)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	// An even number of toggles always ends with the like removed
	assert.Empty(t, final.Likes)

	_, err = repo.ToggleLike(ctx, posts.NewID(), liker)
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

func TestCommentRepo_ListByPost(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	postRepo := NewPostRepository(db)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createTestUser(t, userRepo, "commenter")
	post := createTestPost(t, postRepo, author.ID, time.Now())
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &comments.Comment{
			ID:        posts.NewID(),
			PostID:    post.ID,
			AuthorID:  author.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "comment 0", list[0].Content)
	assert.Equal(t, "comment 2", list[2].Content)

	err = repo.Create(ctx, &comments.Comment{
		ID: posts.NewID(), PostID: posts.NewID(), AuthorID: author.ID, Content: "orphan", CreatedAt: base,
	})
	assert.ErrorIs(t, err, comments.ErrPostNotFound)
}
