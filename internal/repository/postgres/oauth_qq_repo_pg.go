package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type OAuthQQRepository struct {
	db *sqlx.DB
}

func NewOAuthQQRepo(db *sqlx.DB) *OAuthQQRepository {
	return &OAuthQQRepository{db: db}
}

func (r *OAuthQQRepository) FindByOpenID(ctx context.Context, openid string) (*domain.OAuthQQUser, error) {
	const query = `
        SELECT id, user_id, openid, created_at
        FROM tb_oauth_qq
        WHERE openid = $1
    `
	var binding domain.OAuthQQUser
	if err := r.db.GetContext(ctx, &binding, query, openid); err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *OAuthQQRepository) Create(ctx context.Context, userID int64, openid string) (*domain.OAuthQQUser, error) {
	const query = `
        INSERT INTO tb_oauth_qq (user_id, openid)
        VALUES ($1, $2)
        RETURNING id, user_id, openid, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, userID, openid)
	var binding domain.OAuthQQUser
	if err := row.StructScan(&binding); err != nil {
		return nil, err
	}
	return &binding, nil
}
