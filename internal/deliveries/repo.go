package deliveries

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
)

// Repository defines persistence operations for deliveries, including the
// cascade writes delivery completion applies to orders and procurements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, d *models.Delivery) (*models.Delivery, error)
	Find(ctx context.Context, id int64) (*models.Delivery, error)
	FindByOrder(ctx context.Context, orderID int64) (*models.Delivery, error)
	FindByProcurement(ctx context.Context, procurementID int64) (*models.Delivery, error)
	List(ctx context.Context) ([]models.Delivery, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
	CountByDriver(ctx context.Context, driverID int64) (int64, error)
	NumberExists(ctx context.Context, deliveryNo string) (bool, error)
	MarkPaid(ctx context.Context, ids []int64) (int64, error)
	SetOrderStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
	SetProcurementStatus(ctx context.Context, procurementID int64, status enums.ProcurementStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, d *models.Delivery) (*models.Delivery, error) {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *repository) Find(ctx context.Context, id int64) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID int64) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("order_id = ?", orderID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindByProcurement(ctx context.Context, procurementID int64) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("procurement_id = ?", procurementID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context) ([]models.Delivery, error) {
	var rows []models.Delivery
	err := r.db.WithContext(ctx).
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
		Model(&models.Delivery{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Delivery{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CountByDriver(ctx context.Context, driverID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("driver_id = ?", driverID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) NumberExists(ctx context.Context, deliveryNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("delivery_no = ?", deliveryNo).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkPaid flips payment to Received for the matching ids still awaiting
// payment. Rows already Received are silently skipped.
func (r *repository) MarkPaid(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id IN ? AND payment_status = ?", ids, enums.DeliveryPaymentStatusReceive).
		UpdateColumn("payment_status", enums.DeliveryPaymentStatusReceived)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) SetOrderStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("status", status).Error
}

func (r *repository) SetProcurementStatus(ctx context.Context, procurementID int64, status enums.ProcurementStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Procurement{}).
		Where("id = ?", procurementID).
		UpdateColumn("status", status).Error
}
