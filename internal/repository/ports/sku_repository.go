package ports

import (
	"context"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type SKURepository interface {
	ListHotByCategory(ctx context.Context, categoryID int64, limit int) ([]domain.SKU, error)
	ListByCategory(ctx context.Context, categoryID int64, orderBy string, limit, offset int) ([]domain.SKU, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}
