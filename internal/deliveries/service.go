// Package deliveries implements the fulfillment leg workflow: per-driver
// delivery number allocation, the ordered update rules around proof images
// and charges, the delivered/completed cascades, and payment settlement.
package deliveries

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/internal/notifications"
	"github.com/velumart/velumart-backend/internal/parties"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db"
	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
)

const defaultNumberRetries = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines delivery workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Delivery, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Delivery, error)
	MarkDelivered(ctx context.Context, refID int64, status, imagePath string) (*models.Delivery, error)
	MarkCompleted(ctx context.Context, refID int64, imagePath string) (*models.Delivery, error)
	MarkPaid(ctx context.Context, input MarkPaidInput) (int64, error)
	Get(ctx context.Context, id int64) (*models.Delivery, error)
	GetByReference(ctx context.Context, refID int64) (*models.Delivery, error)
	List(ctx context.Context) ([]models.Delivery, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo    Repository
	parties parties.Repository
	notes   notifications.Service
	tx      txRunner
	cfg     config.WorkflowConfig
}

// NewService builds a deliveries service with the required dependencies.
func NewService(repo Repository, reg parties.Repository, notes notifications.Service, tx txRunner, cfg config.WorkflowConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if reg == nil {
		return nil, fmt.Errorf("parties repository required")
	}
	if notes == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		parties: reg,
		notes:   notes,
		tx:      tx,
		cfg:     cfg,
	}, nil
}

// Create assigns a driver a new delivery for exactly one order or
// procurement. The delivery number is seeded from the driver's delivery
// count and the insert leans on the unique constraint, retrying allocation
// on collision.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Delivery, error) {
	if (input.OrderID == nil) == (input.ProcurementID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of order_id or procurement_id is required")
	}
	deliveryType, err := enums.ParseDeliveryType(input.Type)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery type %q", input.Type)
	}
	if _, err := s.parties.FindDriver(ctx, input.DriverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}

	charges := decimal.Zero
	if input.Charges != nil {
		charges = *input.Charges
	}

	retries := s.cfg.DeliveryNumberRetries
	if retries <= 0 {
		retries = defaultNumberRetries
	}

	var created *models.Delivery
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		created, lastErr = s.createOnce(ctx, input, deliveryType, charges)
		if lastErr == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(lastErr, "ux_deliveries_delivery_no") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create delivery")
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "allocate delivery number")
}

func (s *service) createOnce(ctx context.Context, input CreateInput, deliveryType enums.DeliveryType, charges decimal.Decimal) (*models.Delivery, error) {
	var created *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := s.nextNumber(ctx, repo, input.DriverID)
		if err != nil {
			return err
		}

		d := &models.Delivery{
			DeliveryNo:    number,
			OrderID:       input.OrderID,
			ProcurementID: input.ProcurementID,
			DriverID:      input.DriverID,
			Date:          input.Date,
			TimeSlot:      input.TimeSlot,
			Status:        enums.DeliveryStatusPending,
			Type:          deliveryType,
			Charges:       charges,
			PaymentStatus: enums.DeliveryPaymentStatusReceive,
		}
		if _, err := repo.Create(ctx, d); err != nil {
			return err
		}

		if err := s.parties.WithTx(tx).UpdateDriverStatus(ctx, input.DriverID, enums.DriverStatusOnDelivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver status")
		}

		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// nextNumber seeds the candidate from the driver's delivery count and walks
// forward past existing numbers. The unique index still backstops the race
// between concurrent allocations.
func (s *service) nextNumber(ctx context.Context, repo Repository, driverID int64) (string, error) {
	count, err := repo.CountByDriver(ctx, driverID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count driver deliveries")
	}
	seq := count + 1
	for {
		candidate := fmt.Sprintf("Delivery #%02d", seq)
		exists, err := repo.NumberExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check delivery number")
		}
		if !exists {
			return candidate, nil
		}
		seq++
	}
}

// Update applies the ordered rules: Delivered needs a proof image, a new
// image forces Delivered, charges accumulate only while payment is open and
// are refused once Received.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Delivery, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}

	var (
		updated          *models.Delivery
		reachedDelivered bool
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		d, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}

		updates := map[string]any{}

		var requested *enums.DeliveryStatus
		if input.Status != nil {
			status, err := enums.ParseDeliveryStatus(*input.Status)
			if err != nil {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery status %q", *input.Status)
			}
			requested = &status
		}

		if requested != nil && *requested == enums.DeliveryStatusDelivered && input.Image == nil && d.Image == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery image is required to mark as Delivered")
		}

		effective := d.Status
		if input.Image != nil {
			updates["delivery_image"] = *input.Image
			updates["status"] = enums.DeliveryStatusDelivered
			effective = enums.DeliveryStatusDelivered
		} else if requested != nil {
			updates["status"] = *requested
			effective = *requested
		}

		if input.Charges != nil {
			if d.PaymentStatus == enums.DeliveryPaymentStatusReceived {
				return pkgerrors.New(pkgerrors.CodeValidation, "cannot add charges after payment is received")
			}
			updates["charges"] = d.Charges.Add(*input.Charges)
		}
		if input.Date != nil {
			updates["date"] = *input.Date
		}
		if input.TimeSlot != nil {
			updates["time_slot"] = *input.TimeSlot
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		reachedDelivered = effective == enums.DeliveryStatusDelivered && d.Status != enums.DeliveryStatusDelivered

		updated, err = repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload delivery")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reachedDelivered {
		s.notes.Fanout(ctx, s.deliveredNote(updated))
	}
	return updated, nil
}

func (s *service) deliveredNote(d *models.Delivery) models.Notification {
	driver := fmt.Sprintf("driver #%d", d.DriverID)
	if d.Driver != nil {
		driver = fmt.Sprintf("%s %s", d.Driver.FirstName, d.Driver.LastName)
	}
	var msg string
	var note models.Notification
	switch {
	case d.OrderID != nil:
		msg = fmt.Sprintf("Order #%d has been delivered by %s", *d.OrderID, driver)
		note = notifications.AboutOrder(notifications.ForAdmin(s.cfg.AdminID, msg), *d.OrderID)
	case d.ProcurementID != nil:
		msg = fmt.Sprintf("Procurement #%d has been delivered by %s", *d.ProcurementID, driver)
		note = notifications.AboutProcurement(notifications.ForAdmin(s.cfg.AdminID, msg), *d.ProcurementID)
	default:
		msg = fmt.Sprintf("Delivery %s has been completed by %s", d.DeliveryNo, driver)
		note = notifications.ForAdmin(s.cfg.AdminID, msg)
	}
	return note
}

// MarkDelivered records the proof image and cascades the parent workflow:
// status "Delivered" looks the delivery up by its order and moves the order
// to Completed; any other status looks it up by procurement and moves the
// procurement to Picked. The delivery itself always becomes Delivered.
func (s *service) MarkDelivered(ctx context.Context, refID int64, status, imagePath string) (*models.Delivery, error) {
	if refID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	if imagePath == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery image is required")
	}

	byOrder := status == string(enums.DeliveryStatusDelivered)

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var d *models.Delivery
		var err error
		if byOrder {
			d, err = repo.FindByOrder(ctx, refID)
		} else {
			d, err = repo.FindByProcurement(ctx, refID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}

		updates := map[string]any{
			"delivery_image": imagePath,
			"status":         enums.DeliveryStatusDelivered,
		}
		if err := repo.Update(ctx, d.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		if byOrder {
			if err := repo.SetOrderStatus(ctx, refID, enums.OrderStatusCompleted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cascade order status")
			}
		} else {
			if err := repo.SetProcurementStatus(ctx, refID, enums.ProcurementStatusPicked); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cascade procurement status")
			}
		}

		updated, err = repo.Find(ctx, d.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload delivery")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notes.Fanout(ctx, s.deliveredNote(updated))
	return updated, nil
}

// MarkCompleted closes the delivery leg with a proof image, located by order
// first and procurement second. Unlike MarkDelivered it cascades nothing;
// the parent workflow is settled separately.
func (s *service) MarkCompleted(ctx context.Context, refID int64, imagePath string) (*models.Delivery, error) {
	if refID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	if imagePath == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery image is required")
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		d, err := repo.FindByOrder(ctx, refID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d, err = repo.FindByProcurement(ctx, refID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
		}

		updates := map[string]any{
			"delivery_image": imagePath,
			"status":         enums.DeliveryStatusCompleted,
		}
		if err := repo.Update(ctx, d.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
		}

		updated, err = repo.Find(ctx, d.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload delivery")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkPaid settles the listed deliveries, skipping any already Received,
// and reports how many rows actually flipped.
func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) (int64, error) {
	if len(input.DeliveryIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "deliveryIds must not be empty")
	}
	count, err := s.repo.MarkPaid(ctx, input.DeliveryIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark deliveries paid")
	}
	return count, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Delivery, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}
	d, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return d, nil
}

// GetByReference resolves the delivery for an order id first, then for a
// procurement id.
func (s *service) GetByReference(ctx context.Context, refID int64) (*models.Delivery, error) {
	if refID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id required")
	}
	d, err := s.repo.FindByOrder(ctx, refID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d, err = s.repo.FindByProcurement(ctx, refID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return d, nil
}

func (s *service) List(ctx context.Context) ([]models.Delivery, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}
	return rows, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete delivery")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
	}
	return nil
}
