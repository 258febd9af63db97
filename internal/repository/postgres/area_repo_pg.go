package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

type AreaRepository struct {
	db *sqlx.DB
}

func NewAreaRepo(db *sqlx.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) ListProvinces(ctx context.Context) ([]domain.Area, error) {
	const query = `
        SELECT id, name, parent_id
        FROM tb_areas
        WHERE parent_id IS NULL
        ORDER BY id
    `
	areas := []domain.Area{}
	if err := r.db.SelectContext(ctx, &areas, query); err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *AreaRepository) FindWithSubs(ctx context.Context, id int64) (*domain.Area, error) {
	const areaQuery = `SELECT id, name, parent_id FROM tb_areas WHERE id = $1`
	var area domain.Area
	if err := r.db.GetContext(ctx, &area, areaQuery, id); err != nil {
		return nil, err
	}

	const subsQuery = `SELECT id, name, parent_id FROM tb_areas WHERE parent_id = $1 ORDER BY id`
	subs := []domain.Area{}
	if err := r.db.SelectContext(ctx, &subs, subsQuery, id); err != nil {
		return nil, err
	}
	area.Subs = subs
	return &area, nil
}
