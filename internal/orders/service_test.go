package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/internal/catalog"
	"github.com/velumart/velumart-backend/internal/notifications"
	"github.com/velumart/velumart-backend/internal/parties"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
)

type stubOrdersRepo struct {
	order            *models.Order
	orders           []models.Order
	updates          map[string]any
	deleted          int64
	completedDriver  *int64
	create           func(ctx context.Context, order *models.Order) (*models.Order, error)
	failDeleteRows   bool
	listByCustomerFn func(ctx context.Context, customerID int64) ([]models.Order, error)
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.create != nil {
		return s.create(ctx, order)
	}
	if order.ID == 0 {
		order.ID = 1
	}
	s.order = order
	return order, nil
}

func (s *stubOrdersRepo) Find(ctx context.Context, id int64) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) List(ctx context.Context) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubOrdersRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	if s.listByCustomerFn != nil {
		return s.listByCustomerFn(ctx, customerID)
	}
	return s.orders, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if s.order == nil || s.order.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.updates = updates
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = v
	}
	if v, ok := updates["driver_id"].(int64); ok {
		s.order.DriverID = &v
	}
	return nil
}

func (s *stubOrdersRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if s.failDeleteRows {
		return 0, nil
	}
	s.deleted = id
	return 1, nil
}

func (s *stubOrdersRepo) CompleteDriverDeliveries(ctx context.Context, driverID int64) error {
	s.completedDriver = &driverID
	return nil
}

type stubCatalog struct {
	products map[int64]models.Product
	stock    map[int64]int
	decrs    []int64
}

func (s *stubCatalog) WithTx(tx *gorm.DB) catalog.Repository {
	return s
}

func (s *stubCatalog) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (s *stubCatalog) FindProducts(ctx context.Context, ids []int64) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubCatalog) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	remaining, ok := s.stock[productID]
	if !ok || remaining < qty {
		return false, nil
	}
	s.stock[productID] = remaining - qty
	s.decrs = append(s.decrs, productID)
	return true, nil
}

type stubParties struct {
	customers    map[int64]models.Customer
	drivers      map[int64]models.Driver
	driverStatus map[int64]enums.DriverStatus
}

func (s *stubParties) WithTx(tx *gorm.DB) parties.Repository {
	return s
}

func (s *stubParties) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *stubParties) FindVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubParties) FindVendorByContactName(ctx context.Context, name string) (*models.Vendor, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubParties) FindDriver(ctx context.Context, id int64) (*models.Driver, error) {
	d, ok := s.drivers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (s *stubParties) UpdateDriverStatus(ctx context.Context, driverID int64, status enums.DriverStatus) error {
	if s.driverStatus == nil {
		s.driverStatus = map[int64]enums.DriverStatus{}
	}
	s.driverStatus[driverID] = status
	return nil
}

type stubNotesRepo struct {
	appended []models.Notification
}

func (s *stubNotesRepo) WithTx(tx *gorm.DB) notifications.Repository {
	return s
}

func (s *stubNotesRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	s.appended = append(s.appended, *n)
	return n, nil
}

func (s *stubNotesRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubNotesRepo) ListByVendor(ctx context.Context, vendorID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubNotesRepo) ListByDriver(ctx context.Context, driverID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubNotesRepo) MarkRead(ctx context.Context, id int64) (int64, error) {
	return 1, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubOrdersRepo, cat *stubCatalog, reg *stubParties, notesRepo *stubNotesRepo, cfg config.WorkflowConfig) Service {
	t.Helper()

	notes, err := notifications.NewService(notesRepo, nil)
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	svc, err := NewService(repo, cat, reg, notes, stubTxRunner{}, cfg)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	return svc
}

func price(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func TestCreatePricesFromCatalog(t *testing.T) {
	repo := &stubOrdersRepo{}
	cat := &stubCatalog{products: map[int64]models.Product{
		10: {ID: 10, Name: "Tomato", Price: price("25.50")},
		11: {ID: 11, Name: "Onion", Price: price("18.00")},
	}}
	reg := &stubParties{customers: map[int64]models.Customer{7: {ID: 7}}}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, cat, reg, notesRepo, config.WorkflowConfig{})

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID:           7,
		OrderDate:            "2026-01-15",
		PaymentMethod:        string(enums.PaymentMethodCashOnDelivery),
		Address:              "12 Market Rd",
		City:                 "Coimbatore",
		State:                "TN",
		PostalCode:           "641001",
		DeliveryContactName:  "Ravi",
		DeliveryContactPhone: "9876543210",
		Items: []CreateItemInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !strings.HasPrefix(order.OrderCode, "VLM-ORD") {
		t.Fatalf("unexpected order code %q", order.OrderCode)
	}
	if order.Status != enums.OrderStatusNew {
		t.Fatalf("unexpected status %s", order.Status)
	}
	want := price("105.00")
	if !order.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s got %s", want, order.TotalAmount)
	}
	if !order.Items[0].UnitPrice.Equal(price("25.50")) {
		t.Fatalf("unexpected unit price %s", order.Items[0].UnitPrice)
	}
	if len(notesRepo.appended) != 1 {
		t.Fatalf("expected creation notification got %d", len(notesRepo.appended))
	}
	if notesRepo.appended[0].CustomerID == nil || *notesRepo.appended[0].CustomerID != 7 {
		t.Fatalf("notification addressed wrong: %+v", notesRepo.appended[0])
	}
}

func TestCreateUnknownProductIsNotFound(t *testing.T) {
	repo := &stubOrdersRepo{}
	cat := &stubCatalog{products: map[int64]models.Product{}}
	reg := &stubParties{customers: map[int64]models.Customer{7: {ID: 7}}}
	svc := newTestService(t, repo, cat, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    7,
		OrderDate:     "2026-01-15",
		PaymentMethod: string(enums.PaymentMethodCashOnDelivery),
		Items:         []CreateItemInput{{ProductID: 99, Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestCreateRetriesOrderCodeCollision(t *testing.T) {
	attempts := 0
	repo := &stubOrdersRepo{}
	repo.create = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New(`duplicate key value violates unique constraint "ux_orders_order_code"`)
		}
		order.ID = 1
		repo.order = order
		return order, nil
	}
	cat := &stubCatalog{products: map[int64]models.Product{10: {ID: 10, Price: price("5.00")}}}
	reg := &stubParties{customers: map[int64]models.Customer{7: {ID: 7}}}
	svc := newTestService(t, repo, cat, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    7,
		OrderDate:     "2026-01-15",
		PaymentMethod: string(enums.PaymentMethodCashOnDelivery),
		Items:         []CreateItemInput{{ProductID: 10, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("expected success after retries got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 create attempts got %d", attempts)
	}
	if order == nil || order.ID != 1 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := &stubOrdersRepo{}
	repo.create = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		return nil, errors.New(`duplicate key value violates unique constraint "ux_orders_order_code"`)
	}
	cat := &stubCatalog{products: map[int64]models.Product{10: {ID: 10, Price: price("5.00")}}}
	reg := &stubParties{customers: map[int64]models.Customer{7: {ID: 7}}}
	svc := newTestService(t, repo, cat, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:    7,
		OrderDate:     "2026-01-15",
		PaymentMethod: string(enums.PaymentMethodCashOnDelivery),
		Items:         []CreateItemInput{{ProductID: 10, Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{ID: 1, CustomerID: 7, Status: enums.OrderStatusNew}}
	svc := newTestService(t, repo, &stubCatalog{}, &stubParties{}, &stubNotesRepo{}, config.WorkflowConfig{})

	status := string(enums.OrderStatusDelivered)
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestUpdateCancelledReopenFlag(t *testing.T) {
	status := string(enums.OrderStatusNew)

	repo := &stubOrdersRepo{order: &models.Order{ID: 1, CustomerID: 7, Status: enums.OrderStatusCancelled}}
	svc := newTestService(t, repo, &stubCatalog{}, &stubParties{}, &stubNotesRepo{}, config.WorkflowConfig{})
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected reopen rejected got %v", err)
	}

	repo = &stubOrdersRepo{order: &models.Order{ID: 1, CustomerID: 7, Status: enums.OrderStatusCancelled}}
	svc = newTestService(t, repo, &stubCatalog{}, &stubParties{}, &stubNotesRepo{}, config.WorkflowConfig{AllowCancelledReopen: true})
	updated, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("expected reopen allowed got %v", err)
	}
	if updated.Status != enums.OrderStatusNew {
		t.Fatalf("unexpected status %s", updated.Status)
	}
}

func TestUpdateDeliveredDecrementsStockAndReleasesDriver(t *testing.T) {
	driverID := int64(3)
	name := "Potato"
	repo := &stubOrdersRepo{order: &models.Order{
		ID:         1,
		CustomerID: 7,
		DriverID:   &driverID,
		Status:     enums.OrderStatusOutForDelivery,
		Items: []models.OrderItem{
			{ProductID: 10, Quantity: 2, Product: &models.Product{ID: 10, Name: name}},
			{ProductID: 11, Quantity: 1},
		},
	}}
	cat := &stubCatalog{stock: map[int64]int{10: 5, 11: 4}}
	reg := &stubParties{}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, cat, reg, notesRepo, config.WorkflowConfig{})

	status := string(enums.OrderStatusDelivered)
	updated, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if cat.stock[10] != 3 || cat.stock[11] != 3 {
		t.Fatalf("unexpected stock %v", cat.stock)
	}
	if repo.completedDriver == nil || *repo.completedDriver != driverID {
		t.Fatalf("expected driver deliveries completed")
	}
	if reg.driverStatus[driverID] != enums.DriverStatusAvailable {
		t.Fatalf("expected driver released got %s", reg.driverStatus[driverID])
	}
}

func TestUpdateDeliveredInsufficientStockFailsWhole(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{
		ID:         1,
		CustomerID: 7,
		Status:     enums.OrderStatusOutForDelivery,
		Items: []models.OrderItem{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 5, Product: &models.Product{ID: 11, Name: "Carrot"}},
		},
	}}
	cat := &stubCatalog{stock: map[int64]int{10: 5, 11: 1}}
	svc := newTestService(t, repo, cat, &stubParties{}, &stubNotesRepo{}, config.WorkflowConfig{})

	status := string(enums.OrderStatusDelivered)
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if !strings.Contains(typed.Error(), "Carrot") {
		t.Fatalf("expected product name in message, got %q", typed.Error())
	}
}

func TestUpdateDriverAssignmentNotifiesDriver(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{ID: 4, CustomerID: 7, Status: enums.OrderStatusConfirmed}}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubCatalog{}, &stubParties{}, notesRepo, config.WorkflowConfig{})

	driverID := int64(9)
	_, err := svc.Update(context.Background(), 4, UpdateInput{DriverID: &driverID})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	assign := fmt.Sprintf("You have been assigned to deliver Order #%d", int64(4))
	found := false
	for _, n := range notesRepo.appended {
		if n.DriverID != nil && *n.DriverID == driverID && n.Message == assign {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected driver assignment notification in %+v", notesRepo.appended)
	}
}

func TestDeleteUnknownOrder(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubCatalog{}, &stubParties{}, &stubNotesRepo{}, config.WorkflowConfig{})

	err := svc.Delete(context.Background(), 42)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestListByCustomerUnknownCustomer(t *testing.T) {
	svc := newTestService(t, &stubOrdersRepo{}, &stubCatalog{}, &stubParties{customers: map[int64]models.Customer{}}, &stubNotesRepo{}, config.WorkflowConfig{})

	_, err := svc.ListByCustomer(context.Background(), 5)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestListByCustomerEmptyIsNotNil(t *testing.T) {
	reg := &stubParties{customers: map[int64]models.Customer{5: {ID: 5}}}
	repo := &stubOrdersRepo{listByCustomerFn: func(ctx context.Context, customerID int64) ([]models.Order, error) {
		return nil, nil
	}}
	svc := newTestService(t, repo, &stubCatalog{}, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	rows, err := svc.ListByCustomer(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if rows == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows got %d", len(rows))
	}
}
