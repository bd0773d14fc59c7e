package procurement

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/internal/notifications"
	"github.com/velumart/velumart-backend/internal/parties"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db/models"
	"github.com/velumart/velumart-backend/pkg/enums"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
)

type stubProcRepo struct {
	stored  *models.Procurement
	updates map[string]any
	create  func(ctx context.Context, p *models.Procurement) (*models.Procurement, error)
}

func (s *stubProcRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubProcRepo) Create(ctx context.Context, p *models.Procurement) (*models.Procurement, error) {
	if s.create != nil {
		return s.create(ctx, p)
	}
	if p.ID == 0 {
		p.ID = 1
	}
	clone := *p
	s.stored = &clone
	return p, nil
}

func (s *stubProcRepo) Find(ctx context.Context, id int64) (*models.Procurement, error) {
	if s.stored == nil || s.stored.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.stored
	return &clone, nil
}

func (s *stubProcRepo) List(ctx context.Context) ([]models.Procurement, error) {
	if s.stored == nil {
		return nil, nil
	}
	return []models.Procurement{*s.stored}, nil
}

func (s *stubProcRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if s.stored == nil || s.stored.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.updates = updates
	if v, ok := updates["status"].(enums.ProcurementStatus); ok {
		s.stored.Status = v
	}
	if v, ok := updates["driver_id"]; ok {
		if id, ok := v.(int64); ok {
			s.stored.DriverID = &id
		} else {
			s.stored.DriverID = nil
		}
	}
	if v, ok := updates["total_amount"].(decimal.Decimal); ok {
		s.stored.TotalAmount = v
	}
	if v, ok := updates["items"].(string); ok {
		s.stored.Items = v
	}
	if v, ok := updates["vendor_id"].(int64); ok {
		s.stored.VendorID = &v
	}
	if v, ok := updates["vendor_name"].(string); ok {
		s.stored.VendorName = &v
	}
	if v, ok := updates["price"].(decimal.Decimal); ok {
		s.stored.Price = v
	}
	return nil
}

type stubVendors struct {
	vendors   map[int64]models.Vendor
	byContact map[string]models.Vendor
}

func (s *stubVendors) WithTx(tx *gorm.DB) parties.Repository {
	return s
}

func (s *stubVendors) FindCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendors) FindVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	v, ok := s.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (s *stubVendors) FindVendorByContactName(ctx context.Context, name string) (*models.Vendor, error) {
	v, ok := s.byContact[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (s *stubVendors) FindDriver(ctx context.Context, id int64) (*models.Driver, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVendors) UpdateDriverStatus(ctx context.Context, driverID int64, status enums.DriverStatus) error {
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

func newTestService(t *testing.T, repo *stubProcRepo, reg *stubVendors, notesRepo *stubNotesRepo, cfg config.WorkflowConfig) Service {
	t.Helper()

	notes, err := notifications.NewService(notesRepo, nil)
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	svc, err := NewService(repo, reg, notes, stubTxRunner{}, cfg)
	if err != nil {
		t.Fatalf("procurement service: %v", err)
	}
	return svc
}

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

const sampleItems = `[{"product_name":"Tomato","quantity":"10","unit_price":"25.00"}]`

func TestTotalAppliesTaxFormula(t *testing.T) {
	// 10 x 25 x (1 + (2.5+2.5)/100) + 40 = 302.50
	got := Total(dec("10"), dec("25"), dec("2.5"), dec("2.5"), dec("40"))
	if !got.Equal(dec("302.50")) {
		t.Fatalf("expected 302.50 got %s", got)
	}

	// zero tax, zero fee degenerates to unit x price
	got = Total(dec("3"), dec("7"), decimal.Zero, decimal.Zero, decimal.Zero)
	if !got.Equal(dec("21")) {
		t.Fatalf("expected 21 got %s", got)
	}
}

func TestCreateAdminResolvesVendorByName(t *testing.T) {
	repo := &stubProcRepo{}
	name := "Kumar"
	reg := &stubVendors{byContact: map[string]models.Vendor{
		name: {ID: 12, ContactPerson: name, BusinessName: "Kumar Farms"},
	}}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, reg, notesRepo, config.WorkflowConfig{AdminID: 1})

	p, err := svc.Create(context.Background(), CreateInput{
		Type:                 "admin",
		VendorName:           &name,
		Items:                sampleItems,
		Category:             "Vegetables",
		Unit:                 dec("10"),
		Price:                dec("25"),
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "weekly restock",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if p.VendorID == nil || *p.VendorID != 12 {
		t.Fatalf("expected vendor resolved got %+v", p.VendorID)
	}
	if p.Status != enums.ProcurementStatusRequested {
		t.Fatalf("unexpected status %s", p.Status)
	}
	if !p.TotalAmount.Equal(dec("250")) {
		t.Fatalf("unexpected total %s", p.TotalAmount)
	}
	if len(notesRepo.appended) != 2 {
		t.Fatalf("expected vendor and admin notifications got %d", len(notesRepo.appended))
	}
}

func TestCreateAdminUnknownVendorName(t *testing.T) {
	repo := &stubProcRepo{}
	reg := &stubVendors{byContact: map[string]models.Vendor{}}
	svc := newTestService(t, repo, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	name := "Nobody"
	_, err := svc.Create(context.Background(), CreateInput{
		Type:                 "admin",
		VendorName:           &name,
		Items:                sampleItems,
		Category:             "Vegetables",
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "restock",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
	if typed.Message() != fmt.Sprintf("Vendor not found with name: %s", name) {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if repo.stored != nil {
		t.Fatal("nothing should be persisted")
	}
}

func TestCreateVendorRequiresVendorID(t *testing.T) {
	svc := newTestService(t, &stubProcRepo{}, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	_, err := svc.Create(context.Background(), CreateInput{
		Type:                 "vendor",
		Items:                sampleItems,
		Category:             "Vegetables",
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "restock",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestCreateFarmerCarriesNoVendor(t *testing.T) {
	repo := &stubProcRepo{}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{})

	p, err := svc.Create(context.Background(), CreateInput{
		Type:                 "farmer",
		Items:                sampleItems,
		Category:             "Vegetables",
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "harvest drop",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if p.VendorID != nil || p.VendorName != nil {
		t.Fatalf("farmer request should carry no vendor: %+v", p)
	}
	if len(notesRepo.appended) != 0 {
		t.Fatalf("expected no notifications got %d", len(notesRepo.appended))
	}
}

func TestCreateRetriesOrderCodeCollision(t *testing.T) {
	attempts := 0
	repo := &stubProcRepo{}
	repo.create = func(ctx context.Context, p *models.Procurement) (*models.Procurement, error) {
		attempts++
		if attempts < 3 {
			return nil, fmt.Errorf(`duplicate key value violates unique constraint "ux_procurements_order_code"`)
		}
		p.ID = 1
		return p, nil
	}
	svc := newTestService(t, repo, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	p, err := svc.Create(context.Background(), CreateInput{
		Type:                 "farmer",
		Items:                sampleItems,
		Category:             "Vegetables",
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "restock",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts got %d", attempts)
	}
	if p.ID != 1 {
		t.Fatalf("unexpected id %d", p.ID)
	}
}

func TestCreateRejectsMalformedItems(t *testing.T) {
	svc := newTestService(t, &stubProcRepo{}, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	_, err := svc.Create(context.Background(), CreateInput{
		Type:                 "farmer",
		Items:                "not json",
		Category:             "Vegetables",
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "x",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func storedProcurement(status enums.ProcurementStatus) *models.Procurement {
	vendorID := int64(12)
	vendorName := "Kumar"
	return &models.Procurement{
		ID:                   1,
		OrderCode:            "VLM-ORD123456789",
		Type:                 enums.ProcurementTypeVendor,
		VendorID:             &vendorID,
		VendorName:           &vendorName,
		Items:                sampleItems,
		Category:             "Vegetables",
		Unit:                 dec("10"),
		Price:                dec("25"),
		TotalAmount:          dec("250"),
		OrderDate:            "2026-01-15",
		ExpectedDeliveryDate: "2026-01-20",
		Notes:                "restock",
		Status:               status,
	}
}

func TestUpdateAdminVendorNameResolves(t *testing.T) {
	stored := storedProcurement(enums.ProcurementStatusRequested)
	stored.Type = enums.ProcurementTypeAdmin
	repo := &stubProcRepo{stored: stored}
	newName := "Lakshmi"
	reg := &stubVendors{byContact: map[string]models.Vendor{
		newName: {ID: 21, ContactPerson: newName, BusinessName: "Lakshmi Traders"},
	}}
	svc := newTestService(t, repo, reg, &stubNotesRepo{}, config.WorkflowConfig{})

	updated, err := svc.Update(context.Background(), 1, UpdateInput{VendorName: &newName})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.VendorID == nil || *updated.VendorID != 21 {
		t.Fatalf("expected vendor_id moved to 21 got %v", updated.VendorID)
	}
	if updated.VendorName == nil || *updated.VendorName != newName {
		t.Fatalf("expected vendor_name %q got %v", newName, updated.VendorName)
	}
	if v, ok := repo.updates["vendor_id"].(int64); !ok || v != 21 {
		t.Fatalf("expected vendor_id in updates got %v", repo.updates)
	}
}

func TestUpdateAdminUnknownVendorName(t *testing.T) {
	stored := storedProcurement(enums.ProcurementStatusRequested)
	stored.Type = enums.ProcurementTypeAdmin
	repo := &stubProcRepo{stored: stored}
	svc := newTestService(t, repo, &stubVendors{byContact: map[string]models.Vendor{}}, &stubNotesRepo{}, config.WorkflowConfig{})

	name := "NoSuchVendor"
	_, err := svc.Update(context.Background(), 1, UpdateInput{VendorName: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
	if typed.Message() != fmt.Sprintf("Vendor not found with name: %s", name) {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if repo.stored.VendorID == nil || *repo.stored.VendorID != 12 {
		t.Fatalf("vendor pairing must be untouched got %v", repo.stored.VendorID)
	}
	if *repo.stored.VendorName != "Kumar" {
		t.Fatalf("vendor pairing must be untouched got %v", *repo.stored.VendorName)
	}
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	svc := newTestService(t, repo, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	status := string(enums.ProcurementStatusPicked)
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestUpdateRequestedClearsDriver(t *testing.T) {
	driverID := int64(4)
	stored := storedProcurement(enums.ProcurementStatusConfirmed)
	stored.DriverID = &driverID
	repo := &stubProcRepo{stored: stored}
	svc := newTestService(t, repo, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	status := string(enums.ProcurementStatusRequested)
	updated, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.DriverID != nil {
		t.Fatalf("expected driver cleared got %v", *updated.DriverID)
	}
	if v, ok := repo.updates["driver_id"]; !ok || v != nil {
		t.Fatalf("expected driver_id nil in updates got %v", repo.updates)
	}
}

func TestUpdatePriceMoveDetectsNegotiation(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{AdminID: 1})

	party := "vendor"
	newPrice := dec("30")
	_, err := svc.Update(context.Background(), 1, UpdateInput{Price: &newPrice, NegotiationType: &party})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	found := false
	for _, n := range notesRepo.appended {
		if n.AdminID != nil && n.Message == "Price negotiation on procurement VLM-ORD123456789" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected admin negotiation notification in %+v", notesRepo.appended)
	}
}

func TestUpdatePriceMoveWithoutPartyIsSilent(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{AdminID: 1})

	newPrice := dec("30")
	_, err := svc.Update(context.Background(), 1, UpdateInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(notesRepo.appended) != 0 {
		t.Fatalf("expected no notifications got %+v", notesRepo.appended)
	}
}

func TestUpdateSamePriceIsNotNegotiation(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{AdminID: 1})

	samePrice := dec("25.00")
	sameItems := sampleItems
	_, err := svc.Update(context.Background(), 1, UpdateInput{Price: &samePrice, Items: &sameItems})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	for _, n := range notesRepo.appended {
		if n.Message == "Price negotiation on procurement VLM-ORD123456789" {
			t.Fatalf("unexpected negotiation notification")
		}
	}
}

func TestUpdateItemUnitPriceMoveDetectsNegotiation(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{AdminID: 1})

	party := "admin"
	changed := `[{"product_name":"Tomato","quantity":"10","unit_price":"27.00"}]`
	_, err := svc.Update(context.Background(), 1, UpdateInput{Items: &changed, NegotiationType: &party})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	found := false
	for _, n := range notesRepo.appended {
		if n.VendorID != nil && n.Message == "Price negotiation on procurement VLM-ORD123456789" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected vendor-addressed negotiation notification in %+v", notesRepo.appended)
	}
}

func TestUpdateRecomputesTotal(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusRequested)}
	svc := newTestService(t, repo, &stubVendors{}, &stubNotesRepo{}, config.WorkflowConfig{})

	fee := dec("40")
	cgst := dec("2.5")
	sgst := dec("2.5")
	updated, err := svc.Update(context.Background(), 1, UpdateInput{CGST: &cgst, SGST: &sgst, DeliveryFee: &fee})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !updated.TotalAmount.Equal(dec("302.50")) {
		t.Fatalf("expected total 302.50 got %s", updated.TotalAmount)
	}
}

func TestUpdateStatusApprovedNotifiesAdmin(t *testing.T) {
	repo := &stubProcRepo{stored: storedProcurement(enums.ProcurementStatusWaitingForApproval)}
	notesRepo := &stubNotesRepo{}
	svc := newTestService(t, repo, &stubVendors{}, notesRepo, config.WorkflowConfig{AdminID: 1})

	status := string(enums.ProcurementStatusApproved)
	_, err := svc.Update(context.Background(), 1, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	found := false
	for _, n := range notesRepo.appended {
		if n.AdminID != nil && n.Message == "Procurement VLM-ORD123456789 approved, assigned to no driver" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected approval notification in %+v", notesRepo.appended)
	}
}
