package accounts

import (
	"context"

	"github.com/avolkovs/accountd/internal/server/models"
)

// Repository is the persistence contract for accounts. Implementations
// assign the id on Create; methods whose name says "Active" filter out
// deactivated rows, the rest see every row.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUsernameActive(ctx context.Context, username string) (*models.Account, error)
	GetByIDActive(ctx context.Context, id string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	ListActive(ctx context.Context) ([]*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	ExistsActiveWithUsername(ctx context.Context, username string) (bool, error)
	ExistsActiveWithEmail(ctx context.Context, email string) (bool, error)
}
