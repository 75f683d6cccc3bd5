package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for account operations
type UserRepository interface {
	CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, logger: observability.NewRepoLogger("users")}
}

// CreateAccount inserts the user and, when profile is non-nil, its profile in the same transaction.
func (r *userRepository) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		return tx.Omit("User").Create(profile).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("User already exists", err)
		}
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"user_id": user.ID, "with_profile": profile != nil})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", strings.TrimSpace(username))
}

// findOne returns nil, nil when no row matches.
func (r *userRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(&models.User{ID: user.ID}).
		Select("username", "email", "password", "is_staff").
		Updates(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username or email already taken", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the account and cascades through its profile.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Where("user_id = ?", id).Take(&profile).Error
		switch {
		case err == nil:
			if err := deleteProfileCascade(tx, profile.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]any{"user_id": id})
	return nil
}
