package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/velumart/velumart-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Find(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (int64, error)
	CompleteDriverDeliveries(ctx context.Context, driverID int64) error
}
