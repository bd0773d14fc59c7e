// Package procurement implements the restock request workflow: creation by
// admin, vendor or farmer, negotiation detection on price movement, and the
// status machine with its notification side effects.
package procurement

import (
	"context"
	"encoding/json"
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
	"github.com/velumart/velumart-backend/pkg/ordercode"
)

const orderCodeAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines procurement workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Procurement, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Procurement, error)
	Get(ctx context.Context, id int64) (*models.Procurement, error)
	List(ctx context.Context) ([]models.Procurement, error)
}

type service struct {
	repo    Repository
	parties parties.Repository
	notes   notifications.Service
	tx      txRunner
	cfg     config.WorkflowConfig
}

// NewService builds a procurement service with the required dependencies.
func NewService(repo Repository, reg parties.Repository, notes notifications.Service, tx txRunner, cfg config.WorkflowConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("procurement repository required")
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

// Total applies the tax formula: unit x price x (1 + (cgst+sgst)/100) plus
// the delivery fee.
func Total(unit, price, cgst, sgst, deliveryFee decimal.Decimal) decimal.Decimal {
	taxRate := cgst.Add(sgst).Div(decimal.NewFromInt(100))
	return unit.Mul(price).Mul(decimal.NewFromInt(1).Add(taxRate)).Add(deliveryFee)
}

// Create registers a procurement request. An admin-raised request names the
// vendor by contact person and fails with 404 before anything is persisted
// when the name resolves to nobody.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Procurement, error) {
	procType, err := enums.ParseProcurementType(input.Type)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid procurement type %q", input.Type)
	}
	if _, err := parseItems(input.Items); err != nil {
		return nil, err
	}

	vendorID, vendorName, err := s.resolveVendor(ctx, procType, input.VendorID, input.VendorName)
	if err != nil {
		return nil, err
	}

	p := &models.Procurement{
		Type:                 procType,
		VendorID:             vendorID,
		VendorName:           vendorName,
		Items:                input.Items,
		Category:             input.Category,
		ProductImage:         input.ProductImage,
		Unit:                 input.Unit,
		Price:                input.Price,
		CGST:                 input.CGST,
		SGST:                 input.SGST,
		DeliveryFee:          input.DeliveryFee,
		TotalAmount:          Total(input.Unit, input.Price, input.CGST, input.SGST, input.DeliveryFee),
		OrderDate:            input.OrderDate,
		ExpectedDeliveryDate: input.ExpectedDeliveryDate,
		Notes:                input.Notes,
		Status:               enums.ProcurementStatusRequested,
	}

	var lastErr error
	for attempt := 0; attempt < orderCodeAttempts; attempt++ {
		p.ID = 0
		p.OrderCode = ordercode.New()
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.repo.WithTx(tx).Create(ctx, p)
			return err
		})
		if lastErr == nil {
			break
		}
		if !db.IsUniqueViolation(lastErr, "ux_procurements_order_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create procurement")
		}
	}
	if lastErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "allocate procurement code")
	}

	s.fanoutCreate(ctx, p)
	return p, nil
}

func (s *service) resolveVendor(ctx context.Context, procType enums.ProcurementType, vendorID *int64, vendorName *string) (*int64, *string, error) {
	switch procType {
	case enums.ProcurementTypeAdmin:
		if vendorName == nil || *vendorName == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor_name is required for admin procurement")
		}
		vendor, err := s.parties.FindVendorByContactName(ctx, *vendorName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "Vendor not found with name: %s", *vendorName)
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendor by name")
		}
		return &vendor.ID, &vendor.ContactPerson, nil

	case enums.ProcurementTypeVendor:
		if vendorID == nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor_id is required for vendor procurement")
		}
		vendor, err := s.parties.FindVendor(ctx, *vendorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
			}
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
		}
		return &vendor.ID, &vendor.ContactPerson, nil

	default:
		// farmer requests carry no vendor
		return nil, nil, nil
	}
}

func (s *service) fanoutCreate(ctx context.Context, p *models.Procurement) {
	if p.VendorID == nil {
		return
	}
	name := ""
	if p.VendorName != nil {
		name = *p.VendorName
	}
	vendorNote := notifications.AboutProcurement(
		notifications.ForVendor(*p.VendorID, fmt.Sprintf("Procurement %s has been created", p.OrderCode)),
		p.ID,
	)
	adminMsg := fmt.Sprintf("Procurement %s created for vendor %s", p.OrderCode, name)
	if p.Type == enums.ProcurementTypeVendor {
		adminMsg = fmt.Sprintf("Vendor %s submitted procurement %s", name, p.OrderCode)
	}
	adminNote := notifications.AboutProcurement(notifications.ForAdmin(s.cfg.AdminID, adminMsg), p.ID)
	s.notes.Fanout(ctx, vendorNote, adminNote)
}

// Update merges the provided fields, recomputing the total whenever a
// pricing component moves and running negotiation detection before the
// merge. Setting status back to Requested always clears the driver.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Procurement, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "procurement id required")
	}

	var (
		updated      *models.Procurement
		prior        *models.Procurement
		negotiated   bool
		statusChange bool
		driverChange bool
		target       enums.ProcurementStatus
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		p, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "procurement not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load procurement")
		}
		prior = p

		if err := validateVendorFields(p, input); err != nil {
			return err
		}

		negotiated, err = detectNegotiation(p, input)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Status != nil {
			status, err := enums.ParseProcurementStatus(*input.Status)
			if err != nil {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid procurement status %q", *input.Status)
			}
			if !enums.CanTransitionProcurement(p.Status, status) {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot transition procurement from %s to %s", p.Status, status)
			}
			if status != p.Status {
				updates["status"] = status
				statusChange = true
				target = status
			}
			if status == enums.ProcurementStatusRequested {
				updates["driver_id"] = nil
			}
		}
		driverChange = input.DriverID != nil && (p.DriverID == nil || *p.DriverID != *input.DriverID)
		if driverChange {
			if _, ok := updates["driver_id"]; !ok {
				updates["driver_id"] = *input.DriverID
			} else {
				driverChange = false
			}
		}

		mergeFields(updates, input)

		// An admin-raised row names its vendor by contact person, so a new
		// name must resolve to a real vendor and move vendor_id with it.
		if p.Type == enums.ProcurementTypeAdmin && input.VendorName != nil {
			vendor, err := s.parties.WithTx(tx).FindVendorByContactName(ctx, *input.VendorName)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Newf(pkgerrors.CodeNotFound, "Vendor not found with name: %s", *input.VendorName)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendor by name")
			}
			updates["vendor_id"] = vendor.ID
			updates["vendor_name"] = vendor.ContactPerson
		}

		applyTotal(updates, p, input)

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update procurement")
		}

		updated, err = repo.Find(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload procurement")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fanoutUpdate(ctx, updated, prior, input, negotiated, statusChange, driverChange, target)
	return updated, nil
}

func validateVendorFields(p *models.Procurement, input UpdateInput) error {
	if p.Type == enums.ProcurementTypeAdmin && input.VendorName == nil && p.VendorName == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor_name is required for admin procurement")
	}
	if p.Type == enums.ProcurementTypeVendor && input.VendorID == nil && p.VendorID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor_id is required for vendor procurement")
	}
	return nil
}

// detectNegotiation reports whether the update moves any price: the headline
// price, any per-line unit price at the same item count, or a change in item
// count at all.
func detectNegotiation(p *models.Procurement, input UpdateInput) (bool, error) {
	if input.Price != nil && !input.Price.Equal(p.Price) {
		return true, nil
	}
	if input.Items == nil {
		return false, nil
	}
	incoming, err := parseItems(*input.Items)
	if err != nil {
		return false, err
	}
	stored, err := parseItems(p.Items)
	if err != nil {
		// stored rows predate strict validation; treat as renegotiation
		return true, nil
	}
	if len(incoming) != len(stored) {
		return true, nil
	}
	for i := range incoming {
		if !incoming[i].UnitPrice.Equal(stored[i].UnitPrice) {
			return true, nil
		}
	}
	return false, nil
}

func parseItems(raw string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "items must be a JSON array")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items must not be empty")
	}
	return items, nil
}

func mergeFields(updates map[string]any, input UpdateInput) {
	if input.VendorID != nil {
		updates["vendor_id"] = *input.VendorID
	}
	if input.VendorName != nil {
		updates["vendor_name"] = *input.VendorName
	}
	if input.Items != nil {
		updates["items"] = *input.Items
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.OrderDate != nil {
		updates["order_date"] = *input.OrderDate
	}
	if input.ExpectedDeliveryDate != nil {
		updates["expected_delivery_date"] = *input.ExpectedDeliveryDate
	}
	if input.ActualDeliveryDate != nil {
		updates["actual_delivery_date"] = *input.ActualDeliveryDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.ProductImage != nil {
		updates["product_image"] = *input.ProductImage
	}
}

func applyTotal(updates map[string]any, p *models.Procurement, input UpdateInput) {
	if input.Unit == nil && input.Price == nil && input.CGST == nil && input.SGST == nil && input.DeliveryFee == nil {
		return
	}
	unit, price, cgst, sgst, fee := p.Unit, p.Price, p.CGST, p.SGST, p.DeliveryFee
	if input.Unit != nil {
		unit = *input.Unit
		updates["unit"] = unit
	}
	if input.Price != nil {
		price = *input.Price
		updates["price"] = price
	}
	if input.CGST != nil {
		cgst = *input.CGST
		updates["cgst"] = cgst
	}
	if input.SGST != nil {
		sgst = *input.SGST
		updates["sgst"] = sgst
	}
	if input.DeliveryFee != nil {
		fee = *input.DeliveryFee
		updates["delivery_fee"] = fee
	}
	updates["total_amount"] = Total(unit, price, cgst, sgst, fee)
}

func (s *service) fanoutUpdate(ctx context.Context, p, prior *models.Procurement, input UpdateInput, negotiated, statusChange, driverChange bool, target enums.ProcurementStatus) {
	var notes []models.Notification

	if negotiated && input.NegotiationType != nil {
		msg := fmt.Sprintf("Price negotiation on procurement %s", p.OrderCode)
		switch enums.NegotiationParty(*input.NegotiationType) {
		case enums.NegotiationPartyVendor:
			notes = append(notes, notifications.AboutProcurement(notifications.ForAdmin(s.cfg.AdminID, msg), p.ID))
		case enums.NegotiationPartyAdmin:
			if p.VendorID != nil {
				notes = append(notes, notifications.AboutProcurement(notifications.ForVendor(*p.VendorID, msg), p.ID))
			}
		}
	}

	if statusChange {
		switch target {
		case enums.ProcurementStatusApproved:
			driver := "no driver"
			if p.Driver != nil {
				driver = fmt.Sprintf("%s %s", p.Driver.FirstName, p.Driver.LastName)
			}
			notes = append(notes, notifications.AboutProcurement(
				notifications.ForAdmin(s.cfg.AdminID, fmt.Sprintf("Procurement %s approved, assigned to %s", p.OrderCode, driver)),
				p.ID,
			))
		case enums.ProcurementStatusPicked:
			notes = append(notes, notifications.AboutProcurement(
				notifications.ForAdmin(s.cfg.AdminID, fmt.Sprintf("Procurement %s has been picked", p.OrderCode)),
				p.ID,
			))
		default:
			if p.VendorID != nil {
				notes = append(notes, notifications.AboutProcurement(
					notifications.ForVendor(*p.VendorID, fmt.Sprintf("Procurement %s status updated from %s to %s", p.OrderCode, prior.Status, target)),
					p.ID,
				))
			}
		}
	}

	if driverChange && p.DriverID != nil {
		notes = append(notes, notifications.AboutProcurement(
			notifications.ForDriver(*p.DriverID, fmt.Sprintf("You have been assigned to deliver Procurement #%d", p.ID)),
			p.ID,
		))
	}

	if len(notes) > 0 {
		s.notes.Fanout(ctx, notes...)
	}
}

func (s *service) Get(ctx context.Context, id int64) (*models.Procurement, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "procurement id required")
	}
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "procurement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load procurement")
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]models.Procurement, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list procurements")
	}
	return rows, nil
}
