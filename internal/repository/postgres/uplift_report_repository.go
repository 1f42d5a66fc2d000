package postgres

import (
	"context"
	"errors"

	"causalUplift/business/uplift"
	"causalUplift/domain"

	"gorm.io/gorm"
)

type UpliftReportRepository struct {
	DB *gorm.DB
}

var _ uplift.ReportRepository = (*UpliftReportRepository)(nil)

func NewUpliftReportRepository(db *gorm.DB) *UpliftReportRepository {
	return &UpliftReportRepository{DB: db}
}

// Save writes the run and its ten decile rows in one transaction.
func (r *UpliftReportRepository) Save(ctx context.Context, report *domain.UpliftReport) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Deciles").Create(report).Error; err != nil {
			return err
		}

		rows := make([]domain.DecileMetric, len(report.Deciles))
		for i, m := range report.Deciles {
			m.ID = 0
			m.RunID = report.ID
			rows[i] = m
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *UpliftReportRepository) FindByID(ctx context.Context, id string) (domain.UpliftReport, error) {
	var report domain.UpliftReport

	err := r.DB.WithContext(ctx).
		Preload("Deciles", func(db *gorm.DB) *gorm.DB {
			return db.Order("decile ASC")
		}).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UpliftReport{}, domain.ErrReportNotFound
		}
		return domain.UpliftReport{}, err
	}

	return report, nil
}

// FindAll returns the newest runs first, without their decile rows.
func (r *UpliftReportRepository) FindAll(ctx context.Context, limit int) ([]domain.UpliftReport, error) {
	var reports []domain.UpliftReport

	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return reports, nil
}
