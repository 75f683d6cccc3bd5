package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPostRepository_CountsAreDistinct(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	tags, err := NewTagRepository(db).GetOrCreate(ctx, []string{"go", "sql", "feeds"})
	require.NoError(t, err)

	author := createProfile(t, db, "author")
	a := createProfile(t, db, "alice")
	b := createProfile(t, db, "bob")
	c := createProfile(t, db, "carol")
	post := createPost(t, db, author, "tagged", time.Now(), tags...)

	react(t, db, a, postTarget(post), true)
	react(t, db, b, postTarget(post), true)
	react(t, db, c, postTarget(post), false)
	top := createComment(t, db, a, post, nil)
	createComment(t, db, b, post, nil)
	createComment(t, db, c, post, top)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.NumLikes)
	assert.Equal(t, int64(1), got.NumDislikes)
	assert.Equal(t, int64(3), got.NumComments)
	assert.Len(t, got.Tags, 3)
	require.NotNil(t, got.Profile)
	require.NotNil(t, got.Profile.User)
	assert.Equal(t, "author", got.Profile.User.Username)

	posts, total, err := repo.List(ctx, PostFilter{TagID: tags[0].ID}, OrderTagPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(2), posts[0].NumLikes)
	assert.Equal(t, int64(3), posts[0].NumComments)
}

func TestPostRepository_ZeroCounts(t *testing.T) {
	db := newTestDB(t)
	author := createProfile(t, db, "author")
	post := createPost(t, db, author, "quiet", time.Now())

	got, err := NewPostRepository(db).GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.NumLikes)
	assert.Zero(t, got.NumDislikes)
	assert.Zero(t, got.NumComments)

	_, err = NewPostRepository(db).GetByID(context.Background(), 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_RecentOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	author := createProfile(t, db, "author")
	fan := createProfile(t, db, "fan")
	base := time.Now().Add(-time.Hour)

	older := createPost(t, db, author, "older", base.Add(-2*time.Hour))
	// Three posts sharing a timestamp: fewer comments first, then more likes.
	busy := createPost(t, db, author, "busy", base)
	liked := createPost(t, db, author, "liked", base)
	plain := createPost(t, db, author, "plain", base)
	newest := createPost(t, db, author, "newest", base.Add(time.Hour))

	createComment(t, db, fan, busy, nil)
	react(t, db, fan, postTarget(liked), true)

	posts, total, err := repo.List(ctx, PostFilter{}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, []uint{newest.ID, liked.ID, plain.ID, busy.ID, older.ID}, postIDs(posts))

	posts, total, err = repo.List(ctx, PostFilter{CreatedAfter: base.Add(-time.Minute)}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.NotContains(t, postIDs(posts), older.ID)
}

func TestPostRepository_ProfileAndTagOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	tags, err := NewTagRepository(db).GetOrCreate(ctx, []string{"news"})
	require.NoError(t, err)

	author := createProfile(t, db, "author")
	fan := createProfile(t, db, "fan")
	now := time.Now()

	quiet := createPost(t, db, author, "quiet", now, tags...)
	discussed := createPost(t, db, author, "discussed", now.Add(-time.Hour), tags...)
	createComment(t, db, fan, discussed, nil)
	createComment(t, db, fan, discussed, nil)

	posts, _, err := repo.List(ctx, PostFilter{AuthorID: author.ID}, OrderProfilePosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{discussed.ID, quiet.ID}, postIDs(posts))

	// Tag detail puts the least discussed first.
	posts, _, err = repo.List(ctx, PostFilter{TagID: tags[0].ID}, OrderTagPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{quiet.ID, discussed.ID}, postIDs(posts))
}

func TestPostRepository_PaginationIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	author := createProfile(t, db, "author")
	at := time.Now()
	var want []uint
	for i := 0; i < 7; i++ {
		want = append(want, createPost(t, db, author, "same", at).ID)
	}

	var seen []uint
	for offset := 0; offset < 9; offset += 3 {
		page, total, err := repo.List(ctx, PostFilter{}, OrderRecentPosts, 3, offset)
		require.NoError(t, err)
		assert.Equal(t, int64(7), total)
		seen = append(seen, postIDs(page)...)
	}
	assert.Equal(t, want, seen)
}

func TestPostRepository_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	p1 := createProfile(t, db, "p1")
	p2 := createProfile(t, db, "p2")
	p3 := createProfile(t, db, "p3")

	byP1 := createPost(t, db, p1, "from p1", time.Now())
	byP3 := createPost(t, db, p3, "from p3", time.Now())
	_, err := NewProfileRepository(db).ToggleFollow(ctx, p2.ID, p1.ID)
	require.NoError(t, err)

	posts, total, err := repo.List(ctx, PostFilter{FollowedBy: p2.ID}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []uint{byP1.ID}, postIDs(posts))

	posts, total, err = repo.List(ctx, PostFilter{FollowedBy: p3.ID}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)

	react(t, db, p2, postTarget(byP1), true)
	react(t, db, p2, postTarget(byP3), false)

	posts, _, err = repo.List(ctx, PostFilter{ReactedBy: p2.ID, Liked: true}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{byP1.ID}, postIDs(posts))

	posts, _, err = repo.List(ctx, PostFilter{ReactedBy: p2.ID, Liked: false}, OrderRecentPosts, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{byP3.ID}, postIDs(posts))
}

func TestPostRepository_UpdateReplacesTags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)
	tagRepo := NewTagRepository(db)

	first, err := tagRepo.GetOrCreate(ctx, []string{"one", "two"})
	require.NoError(t, err)
	author := createProfile(t, db, "author")
	post := createPost(t, db, author, "before", time.Now(), first...)

	second, err := tagRepo.GetOrCreate(ctx, []string{"Two", "three"})
	require.NoError(t, err)
	post.Content = "after"
	require.NoError(t, repo.Update(ctx, post, second))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Content)
	names := []string{}
	for _, tag := range got.Tags {
		names = append(names, tag.Name)
	}
	assert.ElementsMatch(t, []string{"two", "three"}, names)

	got.Content = "content only"
	require.NoError(t, repo.Update(ctx, got, nil))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	tags, err := NewTagRepository(db).GetOrCreate(ctx, []string{"gone"})
	require.NoError(t, err)
	author := createProfile(t, db, "author")
	fan := createProfile(t, db, "fan")
	post := createPost(t, db, author, "doomed", time.Now(), tags...)
	keep := createPost(t, db, author, "kept", time.Now())
	comment := createComment(t, db, fan, post, nil)
	createComment(t, db, author, post, comment)
	react(t, db, fan, postTarget(post), true)
	react(t, db, author, commentTarget(comment), true)
	react(t, db, fan, postTarget(keep), true)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Reaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "only the reaction on the surviving post remains")
	require.NoError(t, db.Table("post_tags").Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "tags are shared and survive")

	err = repo.Delete(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
