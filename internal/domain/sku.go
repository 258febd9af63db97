package domain

import "time"

type SKU struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CategoryID   int64     `db:"category_id" json:"category_id"`
	Price        string    `db:"price" json:"price"`
	Comments     int       `db:"comments" json:"comments"`
	Sales        int       `db:"sales" json:"sales"`
	IsLaunched   bool      `db:"is_launched" json:"-"`
	DefaultImage string    `db:"default_image" json:"default_image_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
