package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileIDs(profiles []*models.Profile) []uint {
	ids := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProfileRepository_FollowCountsAndViewer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	p1 := createProfile(t, db, "p1")
	p2 := createProfile(t, db, "p2")
	p3 := createProfile(t, db, "p3")
	createPost(t, db, p1, "one", time.Now())
	createPost(t, db, p1, "two", time.Now())

	following, err := repo.ToggleFollow(ctx, p2.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, following)
	_, err = repo.ToggleFollow(ctx, p3.ID, p1.ID)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, p1.ID, p3.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, p1.ID, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.NumFollowers)
	assert.Equal(t, int64(1), got.NumFollowings)
	assert.Equal(t, int64(2), got.NumPosts)
	assert.True(t, got.IsFollowing)
	require.NotNil(t, got.User)
	assert.Equal(t, "p1", got.User.Username)

	anon, err := repo.GetByID(ctx, p1.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)

	followers, total, err := repo.List(ctx, ProfileFilter{FollowersOf: p1.ID}, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint{p2.ID, p3.ID}, profileIDs(followers))

	followings, _, err := repo.List(ctx, ProfileFilter{FollowingsOf: p1.ID}, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{p3.ID}, profileIDs(followings))

	following, err = repo.ToggleFollow(ctx, p2.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, following)
	got, err = repo.GetByID(ctx, p1.ID, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.NumFollowers)
	assert.False(t, got.IsFollowing)
}

func TestProfileRepository_SearchAndReacted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	alice := createProfile(t, db, "Alice")
	malik := createProfile(t, db, "malik")
	bob := createProfile(t, db, "bob")

	found, total, err := repo.List(ctx, ProfileFilter{Search: "ALI"}, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint{alice.ID, malik.ID}, profileIDs(found))

	post := createPost(t, db, bob, "post", time.Now())
	react(t, db, malik, postTarget(post), true)
	react(t, db, alice, postTarget(post), true)
	react(t, db, bob, postTarget(post), false)

	likers, _, err := repo.List(ctx, ProfileFilter{ReactedToPost: post.ID, Liked: true}, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID, malik.ID}, profileIDs(likers))

	dislikers, _, err := repo.List(ctx, ProfileFilter{ReactedToPost: post.ID, Liked: false}, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, profileIDs(dislikers))
}

func TestProfileRepository_FindByUserIDAndUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	p := createProfile(t, db, "owner")
	found, err := repo.FindByUserID(ctx, p.UserID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	missing, err := repo.FindByUserID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	found.Bio = "hello"
	found.PictureURL = "/media/profiles/1/a.jpg"
	require.NoError(t, repo.Update(ctx, found))
	got, err := repo.GetByID(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "/media/profiles/1/a.jpg", got.PictureURL)

	err = repo.Create(ctx, &models.Profile{UserID: p.UserID})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestProfileRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	gone := createProfile(t, db, "gone")
	stays := createProfile(t, db, "stays")

	ownPost := createPost(t, db, gone, "mine", time.Now())
	otherPost := createPost(t, db, stays, "theirs", time.Now())
	createComment(t, db, stays, ownPost, nil)
	goneComment := createComment(t, db, gone, otherPost, nil)
	reply := createComment(t, db, stays, otherPost, goneComment)
	react(t, db, gone, postTarget(otherPost), true)
	react(t, db, stays, postTarget(ownPost), true)
	react(t, db, stays, commentTarget(goneComment), true)
	_, err := repo.ToggleFollow(ctx, gone.ID, stays.ID)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, stays.ID, gone.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, gone.ID))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Reaction{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Zero(t, count)

	survivor, err := NewCommentRepository(db).GetByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.ReplyToCommentID)

	_, err = repo.GetByID(ctx, gone.ID, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
