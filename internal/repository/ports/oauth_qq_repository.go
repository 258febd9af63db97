package ports

import (
	"context"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type OAuthQQRepository interface {
	FindByOpenID(ctx context.Context, openid string) (*domain.OAuthQQUser, error)
	Create(ctx context.Context, userID int64, openid string) (*domain.OAuthQQUser, error)
}
