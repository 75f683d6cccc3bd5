package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(profiles *profileRepoStub, users *userRepoStub) *ProfileService {
	return NewProfileService(profiles, users, noopPostRepo(), testutil.NewMediaStoreStub(), 10)
}

func TestProfileService_CreateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("conflict when one exists", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(noopProfileRepo(), noopUserRepo())
		_, err := svc.CreateProfile(ctx, 1, "")
		assertAppError(t, err, models.CodeConflict)
	})

	t.Run("staff accounts are refused", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, IsStaff: true}, nil
		}
		svc := newProfileService(withoutProfile(noopProfileRepo()), users)
		_, err := svc.CreateProfile(ctx, 1, "")
		assertAppError(t, err, models.CodeForbidden)
	})

	t.Run("bio too long", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(withoutProfile(noopProfileRepo()), noopUserRepo())
		_, err := svc.CreateProfile(ctx, 1, strings.Repeat("b", models.MaxBioLength+1))
		assertValidationError(t, err)
	})

	t.Run("creates for the account", func(t *testing.T) {
		t.Parallel()
		profiles := withoutProfile(noopProfileRepo())
		var created *models.Profile
		profiles.createFn = func(_ context.Context, p *models.Profile) error {
			p.ID = 31
			created = p
			return nil
		}
		svc := newProfileService(profiles, noopUserRepo())
		profile, err := svc.CreateProfile(ctx, 6, "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, uint(31), profile.ID)
		assert.Equal(t, uint(6), created.UserID)
		assert.Equal(t, "hello", created.Bio)
	})
}

func TestProfileService_UpdateProfile_Ownership(t *testing.T) {
	t.Parallel()

	bio := "new bio"
	updated := false
	profiles := noopProfileRepo()
	profiles.updateFn = func(_ context.Context, p *models.Profile) error {
		updated = true
		assert.Equal(t, "new bio", p.Bio)
		return nil
	}
	svc := newProfileService(profiles, noopUserRepo())

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, ProfileID: 2, Bio: &bio})
	assertAppError(t, err, models.CodeForbidden)
	assert.False(t, updated)

	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 2, ProfileID: 2, Bio: &bio})
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestProfileService_UpdateProfile_MissingProfileIsNotFound(t *testing.T) {
	t.Parallel()

	profiles := noopProfileRepo()
	profiles.getByIDFn = func(_ context.Context, id, _ uint) (*models.Profile, error) {
		return nil, models.NewNotFoundError("Profile", id)
	}
	svc := newProfileService(profiles, noopUserRepo())
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, ProfileID: 404})
	assertAppError(t, err, models.CodeNotFound)
}

func TestProfileService_DeleteProfile(t *testing.T) {
	t.Parallel()

	var deleted uint
	profiles := noopProfileRepo()
	profiles.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := newProfileService(profiles, noopUserRepo())

	assertAppError(t, svc.DeleteProfile(context.Background(), 3, 4), models.CodeForbidden)
	require.NoError(t, svc.DeleteProfile(context.Background(), 4, 4))
	assert.Equal(t, uint(4), deleted)
}

func TestProfileService_ToggleFollow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("self follow is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(noopProfileRepo(), noopUserRepo())
		_, err := svc.ToggleFollow(ctx, 5, 5)
		assertValidationError(t, err)
	})

	t.Run("requires a profile", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(withoutProfile(noopProfileRepo()), noopUserRepo())
		_, err := svc.ToggleFollow(ctx, 5, 6)
		assertAppError(t, err, models.CodeProfileRequired)
	})

	t.Run("alternates follow and unfollow", func(t *testing.T) {
		t.Parallel()
		edges := map[[2]uint]bool{}
		profiles := noopProfileRepo()
		profiles.toggleFollowFn = func(_ context.Context, follower, following uint) (bool, error) {
			key := [2]uint{follower, following}
			edges[key] = !edges[key]
			return edges[key], nil
		}
		svc := newProfileService(profiles, noopUserRepo())

		res, err := svc.ToggleFollow(ctx, 5, 6)
		require.NoError(t, err)
		assert.True(t, res.Following)

		res, err = svc.ToggleFollow(ctx, 5, 6)
		require.NoError(t, err)
		assert.False(t, res.Following)
		assert.Equal(t, uint(6), res.ProfileID)
	})

	t.Run("race surfaces as conflict", func(t *testing.T) {
		t.Parallel()
		profiles := noopProfileRepo()
		profiles.toggleFollowFn = func(_ context.Context, _, _ uint) (bool, error) {
			return false, repository.ErrUniqueViolation
		}
		svc := newProfileService(profiles, noopUserRepo())
		_, err := svc.ToggleFollow(ctx, 5, 6)
		assertAppError(t, err, models.CodeConflict)
	})
}

func TestProfileService_ListPassesViewer(t *testing.T) {
	t.Parallel()

	var gotFilter repository.ProfileFilter
	var gotViewer uint
	var gotLimit int
	profiles := noopProfileRepo()
	profiles.listFn = func(_ context.Context, f repository.ProfileFilter, viewer uint, limit, _ int) ([]*models.Profile, int64, error) {
		gotFilter, gotViewer, gotLimit = f, viewer, limit
		return []*models.Profile{{ID: 1}}, 1, nil
	}
	svc := newProfileService(profiles, noopUserRepo())

	page, err := svc.ListProfiles(context.Background(), "ali", 9, PageParams{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, "ali", gotFilter.Search)
	assert.Equal(t, uint(9), gotViewer)
	assert.Equal(t, MaxPageSize, gotLimit)
	assert.Equal(t, int64(1), page.Count)

	_, err = svc.Followers(context.Background(), 4, 0, PageParams{})
	require.NoError(t, err)
	assert.Equal(t, uint(4), gotFilter.FollowersOf)
	assert.Zero(t, gotViewer)
	assert.Equal(t, 10, gotLimit)
}

func TestProfileService_UploadPicture(t *testing.T) {
	t.Parallel()

	store := testutil.NewMediaStoreStub()
	var saved string
	profiles := noopProfileRepo()
	profiles.updateFn = func(_ context.Context, p *models.Profile) error {
		saved = p.PictureURL
		return nil
	}
	svc := NewProfileService(profiles, noopUserRepo(), noopPostRepo(), store, 10)

	_, err := svc.UploadPicture(context.Background(), UploadPictureInput{
		UserID:    3,
		ProfileID: 3,
		Filename:  "me.png",
		Content:   testutil.PNG(4, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, "/media/profiles/3/1-me.png", saved)
	assert.Len(t, store.Files, 1)
}

func TestProfileService_ReactedToPost_MissingPost(t *testing.T) {
	t.Parallel()

	profiles := noopProfileRepo()
	listed := false
	profiles.listFn = func(_ context.Context, _ repository.ProfileFilter, _ uint, _, _ int) ([]*models.Profile, int64, error) {
		listed = true
		return nil, 0, nil
	}
	posts := noopPostRepo()
	posts.existsFn = func(_ context.Context, id uint) (bool, error) { return id == 1, nil }
	svc := NewProfileService(profiles, noopUserRepo(), posts, testutil.NewMediaStoreStub(), 10)

	for _, like := range []bool{true, false} {
		_, err := svc.ReactedToPost(context.Background(), 999, like, 0, PageParams{})
		assertAppError(t, err, models.CodeNotFound)
	}
	assert.False(t, listed)

	page, err := svc.ReactedToPost(context.Background(), 1, true, 0, PageParams{})
	require.NoError(t, err)
	assert.True(t, listed)
	assert.Empty(t, page.Results)
}
