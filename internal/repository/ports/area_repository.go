package ports

import (
	"context"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type AreaRepository interface {
	ListProvinces(ctx context.Context) ([]domain.Area, error)
	FindWithSubs(ctx context.Context, id int64) (*domain.Area, error)
}
