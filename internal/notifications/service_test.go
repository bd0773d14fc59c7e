package notifications

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
)

type stubRepo struct {
	appended  []models.Notification
	createErr error
	markRows  int64
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.appended = append(s.appended, *n)
	return n, nil
}

func (s *stubRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubRepo) ListByVendor(ctx context.Context, vendorID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubRepo) ListByDriver(ctx context.Context, driverID int64) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubRepo) MarkRead(ctx context.Context, id int64) (int64, error) {
	return s.markRows, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	return svc
}

func TestAppendRequiresExactlyOneRecipient(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	customerID := int64(3)
	vendorID := int64(9)

	cases := []models.Notification{
		{Message: "no recipient"},
		{CustomerID: &customerID, VendorID: &vendorID, Message: "two recipients"},
	}
	for _, n := range cases {
		err := svc.Append(context.Background(), nil, n)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error got %v", err)
		}
	}
	if len(repo.appended) != 0 {
		t.Fatalf("nothing should be persisted got %d", len(repo.appended))
	}
}

func TestAppendRejectsEmptyMessage(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	err := svc.Append(context.Background(), nil, ForCustomer(3, ""))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestAppendPersists(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	note := AboutOrder(ForCustomer(3, "Order #7 confirmed"), 7)
	if err := svc.Append(context.Background(), nil, note); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.appended) != 1 {
		t.Fatalf("expected one row got %d", len(repo.appended))
	}
	got := repo.appended[0]
	if got.CustomerID == nil || *got.CustomerID != 3 {
		t.Fatalf("unexpected recipient %+v", got)
	}
	if got.OrderID == nil || *got.OrderID != 7 {
		t.Fatalf("expected order link got %+v", got)
	}
}

func TestFanoutSwallowsFailures(t *testing.T) {
	repo := &stubRepo{createErr: fmt.Errorf("insert failed")}
	svc := newTestService(t, repo)

	svc.Fanout(context.Background(),
		ForVendor(9, "Procurement VLM-ORD123456789 has been created"),
		ForAdmin(1, "Procurement VLM-ORD123456789 created for vendor Kumar"),
	)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc := newTestService(t, &stubRepo{markRows: 0})

	err := svc.MarkRead(context.Background(), 5)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestListValidatesIDs(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	if _, err := svc.ListForCustomer(context.Background(), 0); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error got %v", err)
	}
	if _, err := svc.ListForVendor(context.Background(), -1); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error got %v", err)
	}
	if _, err := svc.ListForDriver(context.Background(), 0); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error got %v", err)
	}
}
