package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, updates map[string]any) error
	SetRole(ctx context.Context, id uint, role models.Role) error
	SetBanned(ctx context.Context, id uint, banned bool) error
	UpdateAccess(ctx context.Context, id uint, role *models.Role, banned *bool) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	FindPromotionCandidates(ctx context.Context, threshold int) ([]uint, error)
	PromoteToAdmin(ctx context.Context, id uint) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID reads through the user cache. The cached copy has no password
// hash, so callers must never Save it back.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return lookupError(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use", err)
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

func (r *userRepository) update(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("Username or email already in use", res.Error)
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, updates map[string]any) error {
	return r.update(ctx, id, updates)
}

func (r *userRepository) SetRole(ctx context.Context, id uint, role models.Role) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *userRepository) SetBanned(ctx context.Context, id uint, banned bool) error {
	return r.update(ctx, id, map[string]any{"is_banned": banned})
}

// UpdateAccess writes role and ban state in a single UPDATE. Nil fields are
// left untouched.
func (r *userRepository) UpdateAccess(ctx context.Context, id uint, role *models.Role, banned *bool) error {
	updates := map[string]any{}
	if role != nil {
		updates["role"] = *role
	}
	if banned != nil {
		updates["is_banned"] = *banned
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, id, updates)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// FindPromotionCandidates returns ids of role=user accounts with at least
// threshold accepted answers. Moderation status does not affect the count.
func (r *userRepository) FindPromotionCandidates(ctx context.Context, threshold int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Answer{}).
		Joins("JOIN users ON users.id = answers.user_id").
		Where("answers.is_accepted = ?", true).
		Where("users.role = ?", models.RoleUser).
		Group("answers.user_id").
		Having("COUNT(*) >= ?", threshold).
		Order("answers.user_id ASC").
		Pluck("answers.user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// PromoteToAdmin flips role user -> admin. It reports false when the user was
// not a plain user anymore (already promoted or missing).
func (r *userRepository) PromoteToAdmin(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, models.RoleUser).
		Update("role", models.RoleAdmin)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateUser(ctx, id)
	return true, nil
}
