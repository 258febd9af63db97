package domain

import "time"

type Address struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"-"`
	Title      string    `db:"title" json:"title"`
	Receiver   string    `db:"receiver" json:"receiver"`
	ProvinceID int64     `db:"province_id" json:"province_id"`
	CityID     int64     `db:"city_id" json:"city_id"`
	DistrictID int64     `db:"district_id" json:"district_id"`
	Place      string    `db:"place" json:"place"`
	Mobile     string    `db:"mobile" json:"mobile"`
	Tel        *string   `db:"tel" json:"tel,omitempty"`
	Email      *string   `db:"email" json:"email,omitempty"`
	IsDeleted  bool      `db:"is_deleted" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
