package ports

import (
	"context"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type AddressRepository interface {
	Create(ctx context.Context, addr *domain.Address) (*domain.Address, error)
	FindByID(ctx context.Context, userID, id int64) (*domain.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Address, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, addr *domain.Address) (*domain.Address, error)
	UpdateTitle(ctx context.Context, userID, id int64, title string) error
	SoftDelete(ctx context.Context, userID, id int64) error
}
