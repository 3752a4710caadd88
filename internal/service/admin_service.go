package service

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/repository"
)

type AdminService struct {
	users repository.UserRepository
	stats repository.StatsRepository
}

// AdminUpdateUserInput is a partial update; nil fields are left unchanged.
type AdminUpdateUserInput struct {
	Role     *models.Role
	IsBanned *bool
}

func NewAdminService(users repository.UserRepository, stats repository.StatsRepository) *AdminService {
	return &AdminService{users: users, stats: stats}
}

func (s *AdminService) ListUsers(ctx context.Context, actor models.Actor, limit, offset int) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AdminService) GetUser(ctx context.Context, actor models.Actor, id uint) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// UpdateUser sets role and/or ban state. Admins cannot ban or demote themselves.
func (s *AdminService) UpdateUser(ctx context.Context, actor models.Actor, id uint, in AdminUpdateUserInput) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Role == nil && in.IsBanned == nil {
		return nil, models.NewValidationError("Nothing to update")
	}
	if in.Role != nil && !in.Role.Assignable() {
		return nil, models.NewValidationError("Invalid role (user, admin)")
	}
	if id == actor.UserID {
		if in.IsBanned != nil && *in.IsBanned {
			return nil, models.NewForbiddenError("You cannot ban yourself")
		}
		if in.Role != nil && *in.Role != models.RoleAdmin {
			return nil, models.NewForbiddenError("You cannot demote yourself")
		}
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.users.UpdateAccess(ctx, id, in.Role, in.IsBanned); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// ToggleBan flips the ban flag.
func (s *AdminService) ToggleBan(ctx context.Context, actor models.Actor, id uint) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	banned := !user.IsBanned
	return s.UpdateUser(ctx, actor, id, AdminUpdateUserInput{IsBanned: &banned})
}

func (s *AdminService) Stats(ctx context.Context, actor models.Actor) (*models.AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.stats.AdminStats(ctx)
}
