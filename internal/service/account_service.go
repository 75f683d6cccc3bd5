package service

import (
	"context"
	"log/slog"
	"strings"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AccountService owns registration, credentials and account lifecycle.
type AccountService struct {
	userRepo repository.UserRepository
	hashCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsStaff  bool
}

// UpdateAccountInput carries optional changes. Empty fields are left as they are.
type UpdateAccountInput struct {
	UserID   uint
	Username string
	Email    string
	Password string
}

func NewAccountService(userRepo repository.UserRepository) *AccountService {
	return &AccountService{userRepo: userRepo, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Seeders and tests use bcrypt.MinCost.
func (s *AccountService) WithHashCost(cost int) *AccountService {
	s.hashCost = cost
	return s
}

// Register creates the account. Non-staff accounts get their profile in the same transaction.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.ensureAvailable(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		IsStaff:  in.IsStaff,
	}
	var profile *models.Profile
	if !in.IsStaff {
		profile = &models.Profile{}
	}
	if err := s.userRepo.CreateAccount(ctx, user, profile); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "account registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Bool("is_staff", user.IsStaff),
	)
	return user, nil
}

// Authenticate checks credentials. A login containing "@" is treated as an email.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, models.NewValidationError("Login and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *AccountService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username != "" && username != user.Username {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	} else {
		username = ""
	}
	if email != "" && email != user.Email {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	} else {
		email = ""
	}
	if err := s.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if in.Password != "" {
		if err := validation.ValidatePassword(in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStaff promotes or demotes an account. It never touches the profile.
func (s *AccountService) SetStaff(ctx context.Context, login string, staff bool) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", login)
	}
	user.IsStaff = staff
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the account together with its profile and everything the profile owns.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "account deleted", slog.Uint64("user_id", uint64(userID)))
	return nil
}

// ensureAvailable rejects a username or email held by an account other than selfID.
func (s *AccountService) ensureAvailable(ctx context.Context, selfID uint, username, email string) error {
	if username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return models.NewConflictError("Username already taken", nil)
		}
	}
	if email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return models.NewConflictError("Email already registered", nil)
		}
	}
	return nil
}
