// Package orders implements the customer order workflow: creation with
// live catalog pricing, partial updates guarded by the status transition
// table, and the Delivered side effects (stock decrement, fleet completion,
// driver release).
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/internal/catalog"
	"github.com/velumart/velumart-backend/internal/notifications"
	"github.com/velumart/velumart-backend/internal/parties"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db"
	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
	"github.com/velumart/velumart-backend/pkg/ordercode"
)

const orderCodeAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	parties parties.Repository
	notes   notifications.Service
	tx      txRunner
	cfg     config.WorkflowConfig
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, cat catalog.Repository, reg parties.Repository, notes notifications.Service, tx txRunner, cfg config.WorkflowConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
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
		catalog: cat,
		parties: reg,
		notes:   notes,
		tx:      tx,
		cfg:     cfg,
	}, nil
}

// Create places an order. The order row, its items, and the customer's
// creation notification are committed in one transaction; the order code is
// reallocated on unique collision (the whole transaction reruns).
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if !enums.PaymentMethod(input.PaymentMethod).IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", input.PaymentMethod)
	}

	var created *models.Order
	var lastErr error
	for attempt := 0; attempt < orderCodeAttempts; attempt++ {
		created, lastErr = s.createOnce(ctx, input)
		if lastErr == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(lastErr, "ux_orders_order_code") {
			return nil, lastErr
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "allocate order code")
}

func (s *service) createOnce(ctx context.Context, input CreateInput) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reg := s.parties.WithTx(tx)
		if _, err := reg.FindCustomer(ctx, input.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}

		items, total, err := s.priceItems(ctx, tx, input.Items)
		if err != nil {
			return err
		}

		order := &models.Order{
			OrderCode:            ordercode.New(),
			CustomerID:           input.CustomerID,
			OrderDate:            input.OrderDate,
			Status:               enums.OrderStatusNew,
			DeliveryDate:         input.DeliveryDate,
			DeliveryTime:         input.DeliveryTime,
			SpecialInstructions:  input.SpecialInstructions,
			TotalAmount:          total,
			PaymentMethod:        enums.PaymentMethod(input.PaymentMethod),
			Address:              input.Address,
			City:                 input.City,
			State:                input.State,
			PostalCode:           input.PostalCode,
			DeliveryContactName:  input.DeliveryContactName,
			DeliveryContactPhone: input.DeliveryContactPhone,
			Items:                items,
		}

		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "ux_orders_order_code") {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		note := notifications.AboutOrder(
			notifications.ForCustomer(order.CustomerID, fmt.Sprintf("Your order %s has been created", order.OrderCode)),
			order.ID,
		)
		if err := s.notes.Append(ctx, tx, note); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) priceItems(ctx context.Context, tx *gorm.DB, inputs []CreateItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]int64, 0, len(inputs))
	for _, item := range inputs {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.WithTx(tx).FindProducts(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", in.ProductID)
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items = append(items, models.OrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
			Notes:     in.Notes,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

// Update merges the provided fields. A status change must be legal per the
// transition table; reaching Delivered decrements stock for every item
// all-or-nothing, completes the driver's open deliveries and releases the
// driver. Notifications trail the commit and are best-effort.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Order, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var (
		updated      *models.Order
		priorStatus  enums.OrderStatus
		statusChange bool
		driverChange bool
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		priorStatus = order.Status

		updates, target, err := s.buildUpdates(order, input)
		if err != nil {
			return err
		}
		statusChange = target != nil && *target != priorStatus
		driverChange = input.DriverID != nil && (order.DriverID == nil || *order.DriverID != *input.DriverID)

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		if statusChange && *target == enums.OrderStatusDelivered {
			if err := s.applyDelivered(ctx, tx, order, input.DriverID); err != nil {
				return err
			}
		}

		updated, err = repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fanoutUpdate(ctx, updated, priorStatus, statusChange, driverChange)
	return updated, nil
}

func (s *service) buildUpdates(order *models.Order, input UpdateInput) (map[string]any, *enums.OrderStatus, error) {
	updates := map[string]any{}
	var target *enums.OrderStatus

	if input.Status != nil {
		status, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid order status %q", *input.Status)
		}
		if !enums.CanTransitionOrder(order.Status, status, s.cfg.AllowCancelledReopen) {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot transition order from %s to %s", order.Status, status)
		}
		if status != order.Status {
			updates["status"] = status
		}
		target = &status
	}
	if input.DriverID != nil {
		updates["driver_id"] = *input.DriverID
	}
	if input.DeliveryDate != nil {
		updates["delivery_date"] = *input.DeliveryDate
	}
	if input.ActualDeliveryDate != nil {
		updates["actual_delivery_date"] = *input.ActualDeliveryDate
	}
	if input.DeliveryTime != nil {
		updates["delivery_time"] = *input.DeliveryTime
	}
	if input.SpecialInstructions != nil {
		updates["special_instructions"] = *input.SpecialInstructions
	}
	if input.PaymentMethod != nil {
		if !enums.PaymentMethod(*input.PaymentMethod).IsValid() {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", *input.PaymentMethod)
		}
		updates["payment_method"] = *input.PaymentMethod
	}
	if input.InvoiceGenerated != nil {
		updates["invoice_generated"] = *input.InvoiceGenerated
	}
	return updates, target, nil
}

func (s *service) applyDelivered(ctx context.Context, tx *gorm.DB, order *models.Order, newDriverID *int64) error {
	cat := s.catalog.WithTx(tx)
	for _, item := range order.Items {
		ok, err := cat.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			name := fmt.Sprintf("#%d", item.ProductID)
			if item.Product != nil {
				name = item.Product.Name
			}
			return pkgerrors.Newf(pkgerrors.CodeConflict, "Not enough stock for product %s", name)
		}
	}

	driverID := order.DriverID
	if newDriverID != nil {
		driverID = newDriverID
	}
	if driverID != nil {
		if err := s.repo.WithTx(tx).CompleteDriverDeliveries(ctx, *driverID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete driver deliveries")
		}
		if err := s.parties.WithTx(tx).UpdateDriverStatus(ctx, *driverID, enums.DriverStatusAvailable); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release driver")
		}
	}
	return nil
}

func (s *service) fanoutUpdate(ctx context.Context, order *models.Order, prior enums.OrderStatus, statusChange, driverChange bool) {
	var notes []models.Notification
	if statusChange {
		msg := fmt.Sprintf("Order #%d status updated from %s to %s", order.ID, prior, order.Status)
		notes = append(notes, notifications.AboutOrder(notifications.ForCustomer(order.CustomerID, msg), order.ID))
		if order.DriverID != nil {
			notes = append(notes, notifications.AboutOrder(notifications.ForDriver(*order.DriverID, msg), order.ID))
		}
	}
	if driverChange && order.DriverID != nil {
		assign := fmt.Sprintf("You have been assigned to deliver Order #%d", order.ID)
		notes = append(notes, notifications.AboutOrder(notifications.ForDriver(*order.DriverID, assign), order.ID))
	}
	if len(notes) > 0 {
		s.notes.Fanout(ctx, notes...)
	}
}

// Delete hard-deletes the order and its items, then notifies the customer.
func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	s.notes.Fanout(ctx, notifications.ForCustomer(order.CustomerID, fmt.Sprintf("Order #%d has been deleted", order.ID)))
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// ListByCustomer returns the customer's orders newest first. An unknown
// customer is a 404; a known customer with no orders is an empty list.
func (s *service) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if _, err := s.parties.FindCustomer(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	if rows == nil {
		rows = []models.Order{}
	}
	return rows, nil
}
