package service

import (
	"context"
	"strings"

	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a plain user. The role is always user regardless of input.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered", nil)
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable; banned users are refused after a correct password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if user.IsBanned {
		return nil, models.NewForbiddenError("Account is banned")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, actor models.Actor) (*models.User, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, actor.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, in UpdateProfileInput) (*models.User, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["username"] = username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil, models.NewValidationError("Nothing to update")
	}

	if err := s.userRepo.UpdateProfile(ctx, actor.UserID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, actor.UserID)
}
