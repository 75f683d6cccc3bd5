package repository

import (
	"os"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newTestDB returns a migrated in-memory sqlite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	profile := &models.Profile{}
	require.NoError(t, NewUserRepository(db).CreateAccount(t.Context(), user, profile))
	return profile
}

func createPost(t *testing.T, db *gorm.DB, author *models.Profile, content string, createdAt time.Time, tags ...models.Tag) *models.Post {
	t.Helper()
	post := &models.Post{ProfileID: author.ID, Content: content, CreatedAt: createdAt, Tags: tags}
	require.NoError(t, NewPostRepository(db).Create(t.Context(), post))
	return post
}

func createComment(t *testing.T, db *gorm.DB, author *models.Profile, post *models.Post, parent *models.Comment) *models.Comment {
	t.Helper()
	comment := &models.Comment{ProfileID: author.ID, PostID: post.ID, Content: "comment"}
	if parent != nil {
		comment.ReplyToCommentID = &parent.ID
	}
	require.NoError(t, NewCommentRepository(db).Create(t.Context(), comment))
	return comment
}

func react(t *testing.T, db *gorm.DB, actor *models.Profile, target models.Target, like bool) models.ReactionOutcome {
	t.Helper()
	outcome, err := NewReactionRepository(db).Toggle(t.Context(), actor.ID, target, like)
	require.NoError(t, err)
	return outcome
}

func postTarget(p *models.Post) models.Target {
	return models.Target{Kind: models.TargetPost, ID: p.ID}
}

func commentTarget(c *models.Comment) models.Target {
	return models.Target{Kind: models.TargetComment, ID: c.ID}
}
