// Package parties holds the registry lookups for customers, vendors and
// drivers that the workflow services join against.
package parties

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
)

// Repository defines persistence operations over the party tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomer(ctx context.Context, id int64) (*models.Customer, error)
	FindVendor(ctx context.Context, id int64) (*models.Vendor, error)
	FindVendorByContactName(ctx context.Context, name string) (*models.Vendor, error)
	FindDriver(ctx context.Context, id int64) (*models.Driver, error)
	UpdateDriverStatus(ctx context.Context, driverID int64, status enums.DriverStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a parties repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindVendorByContactName(ctx context.Context, name string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).
		Where("contact_person = ?", name).
		First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindDriver(ctx context.Context, id int64) (*models.Driver, error) {
	var driver models.Driver
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) UpdateDriverStatus(ctx context.Context, driverID int64, status enums.DriverStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Driver{}).
		Where("id = ?", driverID).
		UpdateColumn("status", status).Error
}
