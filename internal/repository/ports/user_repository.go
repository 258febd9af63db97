package ports

import (
	"context"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, mobile string, passwordHash, passwordSalt []byte) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	CountByMobile(ctx context.Context, mobile string) (int, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	MarkEmailActive(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64, addressID int64) error
}
