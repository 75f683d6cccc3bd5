package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"agora/internal/media"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	media       media.Store
	pageSize    int
}

type UpdateProfileInput struct {
	UserID    uint
	ProfileID uint
	Bio       *string
}

type UploadPictureInput struct {
	UserID    uint
	ProfileID uint
	Filename  string
	Content   []byte
}

// FollowResult reports the edge state after a follow toggle.
type FollowResult struct {
	Following bool
	ProfileID uint
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	store media.Store,
	pageSize int,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
		media:       store,
		pageSize:    pageSize,
	}
}

// CreateProfile creates the profile for an account that has none. Staff accounts never get one.
func (s *ProfileService) CreateProfile(ctx context.Context, userID uint, bio string) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsStaff {
		return nil, models.NewForbiddenError("Staff accounts do not have profiles")
	}
	if err := validateBio(bio); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Profile already exists", nil)
	}

	profile := &models.Profile{UserID: userID, Bio: strings.TrimSpace(bio)}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID, profile.ID)
}

// GetProfile returns the annotated profile with is_following relative to the viewer.
func (s *ProfileService) GetProfile(ctx context.Context, id, viewerUserID uint) (*models.Profile, error) {
	viewer, err := viewerProfileID(ctx, s.profileRepo, viewerUserID)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, id, viewer)
}

// MyProfile returns the actor's own profile.
func (s *ProfileService) MyProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID, profile.ID)
}

func (s *ProfileService) ListProfiles(ctx context.Context, search string, viewerUserID uint, page PageParams) (models.Page[*models.Profile], error) {
	return s.list(ctx, repository.ProfileFilter{Search: search}, viewerUserID, page)
}

func (s *ProfileService) Followers(ctx context.Context, profileID, viewerUserID uint, page PageParams) (models.Page[*models.Profile], error) {
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return models.Page[*models.Profile]{}, err
	}
	return s.list(ctx, repository.ProfileFilter{FollowersOf: profileID}, viewerUserID, page)
}

func (s *ProfileService) Followings(ctx context.Context, profileID, viewerUserID uint, page PageParams) (models.Page[*models.Profile], error) {
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return models.Page[*models.Profile]{}, err
	}
	return s.list(ctx, repository.ProfileFilter{FollowingsOf: profileID}, viewerUserID, page)
}

// ReactedToPost lists the profiles that liked (like=true) or disliked the post.
func (s *ProfileService) ReactedToPost(ctx context.Context, postID uint, like bool, viewerUserID uint, page PageParams) (models.Page[*models.Profile], error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return models.Page[*models.Profile]{}, models.NewInternalError(err)
	}
	if !exists {
		return models.Page[*models.Profile]{}, models.NewNotFoundError("Post", postID)
	}
	return s.list(ctx, repository.ProfileFilter{ReactedToPost: postID, Liked: like}, viewerUserID, page)
}

func (s *ProfileService) list(ctx context.Context, filter repository.ProfileFilter, viewerUserID uint, page PageParams) (models.Page[*models.Profile], error) {
	page = page.normalize(s.pageSize)
	viewer, err := viewerProfileID(ctx, s.profileRepo, viewerUserID)
	if err != nil {
		return models.Page[*models.Profile]{}, err
	}
	profiles, total, err := s.profileRepo.List(ctx, filter, viewer, page.Limit, page.Offset)
	if err != nil {
		return models.Page[*models.Profile]{}, models.NewInternalError(err)
	}
	return models.NewPage(profiles, total, page.Limit, page.Offset), nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.ownedProfile(ctx, in.UserID, in.ProfileID)
	if err != nil {
		return nil, err
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validateBio(bio); err != nil {
			return nil, err
		}
		profile.Bio = bio
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID, profile.ID)
}

// DeleteProfile removes the actor's profile and everything it owns. The account stays.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID, profileID uint) error {
	profile, err := s.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return err
	}
	return s.profileRepo.Delete(ctx, profile.ID)
}

// ToggleFollow follows the target when the actor does not yet follow it and unfollows otherwise.
func (s *ProfileService) ToggleFollow(ctx context.Context, userID, targetProfileID uint) (FollowResult, error) {
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return FollowResult{}, err
	}
	if actor.ID == targetProfileID {
		return FollowResult{}, models.NewValidationError("You cannot follow yourself")
	}
	if err := s.ensureProfile(ctx, targetProfileID); err != nil {
		return FollowResult{}, err
	}

	following, err := s.profileRepo.ToggleFollow(ctx, actor.ID, targetProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return FollowResult{}, models.NewConflictError("Follow changed concurrently, please retry", err)
		}
		return FollowResult{}, err
	}

	middleware.Logger.InfoContext(ctx, "follow toggled",
		slog.Uint64("follower_id", uint64(actor.ID)),
		slog.Uint64("following_id", uint64(targetProfileID)),
		slog.Bool("following", following),
	)
	return FollowResult{Following: following, ProfileID: targetProfileID}, nil
}

// UploadPicture stores a new profile picture and points the profile at it.
func (s *ProfileService) UploadPicture(ctx context.Context, in UploadPictureInput) (*models.Profile, error) {
	profile, err := s.ownedProfile(ctx, in.UserID, in.ProfileID)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, models.NewInternalError(fmt.Errorf("media store not configured"))
	}
	ref, err := s.media.Save(ctx, fmt.Sprintf("profiles/%d", profile.ID), in.Filename, in.Content)
	if err != nil {
		return nil, err
	}
	profile.PictureURL = ref
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByID(ctx, profile.ID, profile.ID)
}

// ownedProfile resolves the actor's profile and checks it is the one being changed.
func (s *ProfileService) ownedProfile(ctx context.Context, userID, profileID uint) (*models.Profile, error) {
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	if actor.ID != profileID {
		if err := s.ensureProfile(ctx, profileID); err != nil {
			return nil, err
		}
		return nil, models.NewForbiddenError("You can only change your own profile")
	}
	return actor, nil
}

func (s *ProfileService) ensureProfile(ctx context.Context, id uint) error {
	_, err := s.profileRepo.GetByID(ctx, id, 0)
	return err
}

func validateBio(bio string) error {
	if utf8.RuneCountInString(bio) > models.MaxBioLength {
		return models.NewValidationError(fmt.Sprintf("Bio too long (max %d characters)", models.MaxBioLength))
	}
	return nil
}
