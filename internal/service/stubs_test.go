package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	createFn       func(context.Context, *models.Profile) error
	getByIDFn      func(context.Context, uint, uint) (*models.Profile, error)
	findByUserIDFn func(context.Context, uint) (*models.Profile, error)
	listFn         func(context.Context, repository.ProfileFilter, uint, int, int) ([]*models.Profile, int64, error)
	updateFn       func(context.Context, *models.Profile) error
	deleteFn       func(context.Context, uint) error
	toggleFollowFn func(context.Context, uint, uint) (bool, error)
}

func (s *profileRepoStub) Create(ctx context.Context, p *models.Profile) error {
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) GetByID(ctx context.Context, id, viewer uint) (*models.Profile, error) {
	return s.getByIDFn(ctx, id, viewer)
}
func (s *profileRepoStub) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.findByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) List(ctx context.Context, f repository.ProfileFilter, viewer uint, limit, offset int) ([]*models.Profile, int64, error) {
	return s.listFn(ctx, f, viewer, limit, offset)
}
func (s *profileRepoStub) Update(ctx context.Context, p *models.Profile) error {
	return s.updateFn(ctx, p)
}
func (s *profileRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *profileRepoStub) ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.toggleFollowFn(ctx, followerID, followingID)
}

// noopProfileRepo resolves every user ID to the profile with the same ID.
func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(_ context.Context, _ *models.Profile) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Profile, error) {
			return &models.Profile{ID: id, UserID: id}, nil
		},
		findByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{ID: userID, UserID: userID}, nil
		},
		listFn: func(_ context.Context, _ repository.ProfileFilter, _ uint, _, _ int) ([]*models.Profile, int64, error) {
			return nil, 0, nil
		},
		updateFn:       func(_ context.Context, _ *models.Profile) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		toggleFollowFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// withoutProfile makes every account profile-less.
func withoutProfile(s *profileRepoStub) *profileRepoStub {
	s.findByUserIDFn = func(_ context.Context, _ uint) (*models.Profile, error) { return nil, nil }
	return s
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createAccountFn func(context.Context, *models.User, *models.Profile) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
}

func (s *userRepoStub) CreateAccount(ctx context.Context, u *models.User, p *models.Profile) error {
	return s.createAccountFn(ctx, u, p)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error {
	return s.updateFn(ctx, u)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createAccountFn: func(_ context.Context, u *models.User, _ *models.Profile) error {
			u.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user", Email: "user@example.com"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	existsFn  func(context.Context, uint) (bool, error)
	listFn    func(context.Context, repository.PostFilter, string, int, int) ([]*models.Post, int64, error)
	updateFn  func(context.Context, *models.Post, []models.Tag) error
	deleteFn  func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	return s.createFn(ctx, p)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter, order string, limit, offset int) ([]*models.Post, int64, error) {
	return s.listFn(ctx, f, order, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post, tags []models.Tag) error {
	return s.updateFn(ctx, p, tags)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, ProfileID: 1}, nil
		},
		existsFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listFn: func(_ context.Context, _ repository.PostFilter, _ string, _, _ int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		updateFn: func(_ context.Context, _ *models.Post, _ []models.Tag) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	listRepliesFn  func(context.Context, uint, int, int) ([]*models.Comment, int64, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listTopLevelFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listRepliesFn(ctx, commentID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, ProfileID: 1, PostID: 1}, nil
		},
		listTopLevelFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) { return nil, 0, nil },
		listRepliesFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, int64, error) { return nil, 0, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	listFn        func(context.Context, string, int, int) ([]*models.Tag, int64, error)
	getByIDFn     func(context.Context, uint) (*models.Tag, error)
	createFn      func(context.Context, string) (*models.Tag, error)
	getOrCreateFn func(context.Context, []string) ([]models.Tag, error)
}

func (s *tagRepoStub) List(ctx context.Context, search string, limit, offset int) ([]*models.Tag, int64, error) {
	return s.listFn(ctx, search, limit, offset)
}
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) Create(ctx context.Context, name string) (*models.Tag, error) {
	return s.createFn(ctx, name)
}
func (s *tagRepoStub) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	return s.getOrCreateFn(ctx, names)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		listFn:    func(_ context.Context, _ string, _, _ int) ([]*models.Tag, int64, error) { return nil, 0, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Tag, error) { return &models.Tag{ID: id, Name: "go"}, nil },
		createFn: func(_ context.Context, name string) (*models.Tag, error) {
			return &models.Tag{ID: 1, Name: name}, nil
		},
		getOrCreateFn: func(_ context.Context, names []string) ([]models.Tag, error) {
			tags := make([]models.Tag, 0, len(names))
			for i, n := range names {
				tags = append(tags, models.Tag{ID: uint(i + 1), Name: n})
			}
			return tags, nil
		},
	}
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	getFn          func(context.Context, uint, models.Target) (*models.Reaction, error)
	targetExistsFn func(context.Context, models.Target) (bool, error)
	toggleFn       func(context.Context, uint, models.Target, bool) (models.ReactionOutcome, error)
}

func (s *reactionRepoStub) Get(ctx context.Context, profileID uint, target models.Target) (*models.Reaction, error) {
	return s.getFn(ctx, profileID, target)
}
func (s *reactionRepoStub) TargetExists(ctx context.Context, target models.Target) (bool, error) {
	return s.targetExistsFn(ctx, target)
}
func (s *reactionRepoStub) Toggle(ctx context.Context, profileID uint, target models.Target, like bool) (models.ReactionOutcome, error) {
	return s.toggleFn(ctx, profileID, target, like)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		getFn:          func(_ context.Context, _ uint, _ models.Target) (*models.Reaction, error) { return nil, nil },
		targetExistsFn: func(_ context.Context, _ models.Target) (bool, error) { return true, nil },
		toggleFn: func(_ context.Context, _ uint, _ models.Target, _ bool) (models.ReactionOutcome, error) {
			return models.OutcomeCreated, nil
		},
	}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}
