package repository

import (
	"context"
	"time"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for content reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error)
	Resolve(ctx context.Context, id, adminID uint) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, lookupError(err, "Report", id)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	limit, offset = clampPage(limit, offset)
	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	reports := []models.Report{}
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) Resolve(ctx context.Context, id, adminID uint) (*models.Report, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(map[string]any{
		"status":      models.ReportResolved,
		"resolved_by": adminID,
		"resolved_at": now,
	})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Report", id)
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return r.GetByID(ctx, id)
}
