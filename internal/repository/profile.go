package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// ProfileFilter narrows a profile listing. Zero fields are ignored.
type ProfileFilter struct {
	Search        string // case-insensitive substring of the username
	FollowersOf   uint
	FollowingsOf  uint
	ReactedToPost uint // profiles that reacted to this post with Liked
	Liked         bool
}

func (f ProfileFilter) apply(db *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		db = db.Where("profiles.user_id IN (SELECT users.id FROM users WHERE LOWER(users.username) LIKE ?)",
			"%"+strings.ToLower(s)+"%")
	}
	if f.FollowersOf != 0 {
		db = db.Where("profiles.id IN (SELECT follows.follower_id FROM follows WHERE follows.following_id = ?)", f.FollowersOf)
	}
	if f.FollowingsOf != 0 {
		db = db.Where("profiles.id IN (SELECT follows.following_id FROM follows WHERE follows.follower_id = ?)", f.FollowingsOf)
	}
	if f.ReactedToPost != 0 {
		db = db.Where("profiles.id IN (SELECT reactions.profile_id FROM reactions WHERE reactions.target_kind = ? AND reactions.target_id = ? AND reactions.is_like = ?)",
			string(models.TargetPost), f.ReactedToPost, f.Liked)
	}
	return db
}

// ProfileRepository defines the interface for profile and follow operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id, viewerProfileID uint) (*models.Profile, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	List(ctx context.Context, filter ProfileFilter, viewerProfileID uint, limit, offset int) ([]*models.Profile, int64, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uint) error
	ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error)
}

type profileRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, logger: observability.NewRepoLogger("profiles")}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Profile already exists", err)
		}
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"profile_id": profile.ID, "user_id": profile.UserID})
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id, viewerProfileID uint) (*models.Profile, error) {
	var profile models.Profile
	err := annotateProfiles(readDB(r.db).WithContext(ctx).Model(&models.Profile{}), viewerProfileID).
		Preload("User").
		Where("profiles.id = ?", id).
		Take(&profile).Error
	if err != nil {
		return nil, notFoundOr(err, "Profile", id)
	}
	return &profile, nil
}

// FindByUserID returns the profile owned by the user, or nil when the user has none.
func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, filter ProfileFilter, viewerProfileID uint, limit, offset int) ([]*models.Profile, int64, error) {
	defer observability.TrackQuery("list", "profiles")()

	limit, offset = clampPage(limit, offset)
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := filter.apply(db.Model(&models.Profile{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []*models.Profile
	if total == 0 {
		return profiles, 0, nil
	}
	err := filter.apply(annotateProfiles(db.Model(&models.Profile{}), viewerProfileID)).
		Preload("User").
		Order(OrderProfiles).
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Model(&models.Profile{ID: profile.ID}).
		Select("bio", "picture_url", "updated_at").
		Updates(map[string]any{
			"bio":         profile.Bio,
			"picture_url": profile.PictureURL,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProfileCascade(tx, id)
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]any{"profile_id": id})
	return nil
}

// ToggleFollow creates the edge when absent and removes it when present.
// It reports whether the follower now follows the target.
func (r *profileRepository) ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}
		following = true
		return tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrUniqueViolation
		}
		return false, models.NewInternalError(err)
	}
	return following, nil
}

// deleteProfileCascade removes a profile with its posts, comments, reactions
// and follow edges. Replies by other profiles to its comments survive as top-level comments.
func deleteProfileCascade(tx *gorm.DB, profileID uint) error {
	ownPosts := tx.Model(&models.Post{}).Select("id").Where("profile_id = ?", profileID)
	if err := deletePostCascade(tx, ownPosts); err != nil {
		return err
	}
	if err := tx.Where("profile_id = ?", profileID).Delete(&models.Post{}).Error; err != nil {
		return err
	}

	ownComments := tx.Model(&models.Comment{}).Select("id").Where("profile_id = ?", profileID)
	if err := tx.Model(&models.Comment{}).
		Where("reply_to_comment_id IN (?)", ownComments).
		Update("reply_to_comment_id", nil).Error; err != nil {
		return err
	}
	if err := deleteReactions(tx, models.TargetComment, ownComments); err != nil {
		return err
	}
	if err := tx.Where("profile_id = ?", profileID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}

	if err := tx.Where("profile_id = ?", profileID).Delete(&models.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("follower_id = ? OR following_id = ?", profileID, profileID).Delete(&models.Follow{}).Error; err != nil {
		return err
	}

	res := tx.Delete(&models.Profile{}, profileID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profileID)
	}
	return nil
}
