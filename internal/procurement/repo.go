package procurement

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
)

// Repository defines persistence operations for procurements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, p *models.Procurement) (*models.Procurement, error)
	Find(ctx context.Context, id int64) (*models.Procurement, error)
	List(ctx context.Context) ([]models.Procurement, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a procurement repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, p *models.Procurement) (*models.Procurement, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Find(ctx context.Context, id int64) (*models.Procurement, error) {
	var p models.Procurement
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Driver").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]models.Procurement, error) {
	var rows []models.Procurement
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Driver").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Procurement{}).
		Where("id = ?", id).
		Updates(updates).Error
}
