package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

const addressColumns = "id, user_id, title, receiver, province_id, city_id, district_id, place, mobile, tel, email, is_deleted, created_at, updated_at"

type AddressRepository struct {
	db *sqlx.DB
}

func NewAddressRepo(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	const query = `
        INSERT INTO tb_address (user_id, title, receiver, province_id, city_id, district_id, place, mobile, tel, email)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + addressColumns

	row := r.db.QueryRowxContext(ctx, query,
		addr.UserID, addr.Title, addr.Receiver, addr.ProvinceID, addr.CityID,
		addr.DistrictID, addr.Place, addr.Mobile, addr.Tel, addr.Email)
	var created domain.Address
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AddressRepository) FindByID(ctx context.Context, userID, id int64) (*domain.Address, error) {
	const query = `
        SELECT ` + addressColumns + `
        FROM tb_address
        WHERE id = $1 AND user_id = $2 AND NOT is_deleted
    `
	var addr domain.Address
	if err := r.db.GetContext(ctx, &addr, query, id, userID); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Address, error) {
	const query = `
        SELECT ` + addressColumns + `
        FROM tb_address
        WHERE user_id = $1 AND NOT is_deleted
        ORDER BY updated_at DESC
    `
	addrs := []domain.Address{}
	if err := r.db.SelectContext(ctx, &addrs, query, userID); err != nil {
		return nil, err
	}
	return addrs, nil
}

func (r *AddressRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM tb_address WHERE user_id = $1 AND NOT is_deleted`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AddressRepository) Update(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	const query = `
        UPDATE tb_address
        SET title = $3, receiver = $4, province_id = $5, city_id = $6, district_id = $7,
            place = $8, mobile = $9, tel = $10, email = $11, updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND NOT is_deleted
        RETURNING ` + addressColumns

	row := r.db.QueryRowxContext(ctx, query,
		addr.ID, addr.UserID, addr.Title, addr.Receiver, addr.ProvinceID,
		addr.CityID, addr.DistrictID, addr.Place, addr.Mobile, addr.Tel, addr.Email)
	var updated domain.Address
	if err := row.StructScan(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *AddressRepository) UpdateTitle(ctx context.Context, userID, id int64, title string) error {
	const query = `
        UPDATE tb_address
        SET title = $3, updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND NOT is_deleted
    `
	_, err := r.db.ExecContext(ctx, query, id, userID, title)
	return err
}

func (r *AddressRepository) SoftDelete(ctx context.Context, userID, id int64) error {
	const query = `
        UPDATE tb_address
        SET is_deleted = TRUE, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
    `
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}
