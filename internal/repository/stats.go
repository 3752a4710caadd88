package repository

import (
	"context"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// StatsRepository computes dashboard totals.
type StatsRepository interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	err := cache.Aside(ctx, cache.AdminStatsKey, &stats, cache.AdminStatsTTL, func() error {
		db := r.db.WithContext(ctx)
		counts := []struct {
			dest  *int64
			query *gorm.DB
		}{
			{&stats.Users, db.Model(&models.User{})},
			{&stats.Admins, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin)},
			{&stats.BannedUsers, db.Model(&models.User{}).Where("is_banned = ?", true)},
			{&stats.Questions, db.Model(&models.Question{}).Where("status <> ?", models.StatusDeleted)},
			{&stats.FlaggedQuestions, db.Model(&models.Question{}).Where("status = ?", models.StatusFlagged)},
			{&stats.Answers, db.Model(&models.Answer{}).Where("status <> ?", models.StatusDeleted)},
			{&stats.FlaggedAnswers, db.Model(&models.Answer{}).Where("status = ?", models.StatusFlagged)},
			{&stats.PendingReports, db.Model(&models.Report{}).Where("status = ?", models.ReportPending)},
		}
		for _, c := range counts {
			if err := c.query.Count(c.dest).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
