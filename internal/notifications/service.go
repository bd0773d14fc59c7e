// Package notifications is the append-only sink the workflow services fan
// out into. Rows are only ever created and flipped to read; message text is
// the contract the frontends display verbatim.
package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
	"github.com/velumart/velumart-backend/pkg/logger"
)

// Service defines notification append/list/read operations.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, n models.Notification) error
	Fanout(ctx context.Context, notes ...models.Notification)
	ListForCustomer(ctx context.Context, customerID int64) ([]models.Notification, error)
	ListForVendor(ctx context.Context, vendorID int64) ([]models.Notification, error)
	ListForDriver(ctx context.Context, driverID int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires notifications dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// ForCustomer builds a notification addressed to a customer.
func ForCustomer(customerID int64, message string) models.Notification {
	return models.Notification{CustomerID: &customerID, Message: message}
}

// ForVendor builds a notification addressed to a vendor.
func ForVendor(vendorID int64, message string) models.Notification {
	return models.Notification{VendorID: &vendorID, Message: message}
}

// ForDriver builds a notification addressed to a driver.
func ForDriver(driverID int64, message string) models.Notification {
	return models.Notification{DriverID: &driverID, Message: message}
}

// ForAdmin builds a notification addressed to the platform admin.
func ForAdmin(adminID int64, message string) models.Notification {
	return models.Notification{AdminID: &adminID, Message: message}
}

// AboutOrder links a notification to the order that produced it.
func AboutOrder(n models.Notification, orderID int64) models.Notification {
	n.OrderID = &orderID
	return n
}

// AboutProcurement links a notification to the procurement that produced it.
func AboutProcurement(n models.Notification, procurementID int64) models.Notification {
	n.ProcurementID = &procurementID
	return n
}

// Append persists a notification, inside the caller's transaction when tx is
// non-nil. Exactly one recipient must be set.
func (s *service) Append(ctx context.Context, tx *gorm.DB, n models.Notification) error {
	if err := validateRecipient(n); err != nil {
		return err
	}
	if n.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	if _, err := repo.Create(ctx, &n); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append notification")
	}
	return nil
}

// Fanout appends each notification outside any transaction. Failures are
// logged and swallowed: fan-out runs after the primary commit and must never
// fail the request it trails.
func (s *service) Fanout(ctx context.Context, notes ...models.Notification) {
	for _, n := range notes {
		if err := s.Append(ctx, nil, n); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "message", n.Message), "notification fan-out failed")
		}
	}
}

func (s *service) ListForCustomer(ctx context.Context, customerID int64) ([]models.Notification, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer notifications")
	}
	return rows, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID int64) ([]models.Notification, error) {
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	rows, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor notifications")
	}
	return rows, nil
}

func (s *service) ListForDriver(ctx context.Context, driverID int64) ([]models.Notification, error) {
	if driverID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	rows, err := s.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver notifications")
	}
	return rows, nil
}

func (s *service) MarkRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if updated == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func validateRecipient(n models.Notification) error {
	count := 0
	for _, id := range []*int64{n.CustomerID, n.VendorID, n.DriverID, n.AdminID} {
		if id != nil {
			count++
		}
	}
	if count != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification requires exactly one recipient")
	}
	return nil
}
