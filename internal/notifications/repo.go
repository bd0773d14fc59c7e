package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
)

// Repository defines persistence over the append-only notifications table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Notification, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]models.Notification, error)
	ListByDriver(ctx context.Context, driverID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Notification, error) {
	return r.list(ctx, "customer_id = ?", customerID)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID int64) ([]models.Notification, error) {
	return r.list(ctx, "vendor_id = ?", vendorID)
}

func (r *repository) ListByDriver(ctx context.Context, driverID int64) ([]models.Notification, error) {
	return r.list(ctx, "driver_id = ?", driverID)
}

func (r *repository) list(ctx context.Context, cond string, arg any) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkRead(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
