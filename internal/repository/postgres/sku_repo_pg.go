package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
)

const skuColumns = "id, name, category_id, price, comments, sales, is_launched, default_image, created_at"

// orderColumns whitelists the sortable fields exposed by the SKU listing.
var orderColumns = map[string]string{
	"create_time":  "created_at ASC",
	"-create_time": "created_at DESC",
	"price":        "price ASC",
	"-price":       "price DESC",
	"sales":        "sales ASC",
	"-sales":       "sales DESC",
}

type SKURepository struct {
	db *sqlx.DB
}

func NewSKURepo(db *sqlx.DB) *SKURepository {
	return &SKURepository{db: db}
}

func (r *SKURepository) ListHotByCategory(ctx context.Context, categoryID int64, limit int) ([]domain.SKU, error) {
	const query = `
        SELECT ` + skuColumns + `
        FROM tb_sku
        WHERE category_id = $1 AND is_launched
        ORDER BY sales DESC
        LIMIT $2
    `
	skus := []domain.SKU{}
	if err := r.db.SelectContext(ctx, &skus, query, categoryID, limit); err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *SKURepository) ListByCategory(ctx context.Context, categoryID int64, orderBy string, limit, offset int) ([]domain.SKU, error) {
	clause, ok := orderColumns[orderBy]
	if !ok {
		clause = "created_at DESC"
	}
	query := fmt.Sprintf(`
        SELECT `+skuColumns+`
        FROM tb_sku
        WHERE category_id = $1 AND is_launched
        ORDER BY %s
        LIMIT $2 OFFSET $3
    `, clause)

	skus := []domain.SKU{}
	if err := r.db.SelectContext(ctx, &skus, query, categoryID, limit, offset); err != nil {
		return nil, err
	}
	return skus, nil
}

func (r *SKURepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM tb_sku WHERE category_id = $1 AND is_launched`
	var count int
	if err := r.db.GetContext(ctx, &count, query, categoryID); err != nil {
		return 0, err
	}
	return count, nil
}
