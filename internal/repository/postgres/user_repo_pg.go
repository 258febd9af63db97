package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

const userColumns = "id, username, mobile, email, email_active, password_hash, password_salt, default_address_id, created_at, updated_at"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, username, mobile string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	const query = `
        INSERT INTO tb_users (username, mobile, password_hash, password_salt)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, username, mobile, passwordHash, passwordSalt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM tb_users WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM tb_users WHERE username = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM tb_users WHERE mobile = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, mobile); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int, error) {
	const query = `SELECT COUNT(*) FROM tb_users WHERE username = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, username); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) CountByMobile(ctx context.Context, mobile string) (int, error) {
	const query = `SELECT COUNT(*) FROM tb_users WHERE mobile = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, mobile); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE tb_users
        SET password_hash = $2, password_salt = $3, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	const query = `
        UPDATE tb_users
        SET email = $2, email_active = FALSE, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, email)
	return err
}

func (r *UserRepository) MarkEmailActive(ctx context.Context, id int64) error {
	const query = `
        UPDATE tb_users
        SET email_active = TRUE, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) SetDefaultAddress(ctx context.Context, id int64, addressID int64) error {
	const query = `
        UPDATE tb_users
        SET default_address_id = $2, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, addressID)
	return err
}
