package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Mobile       string    `db:"mobile" json:"mobile"`
	Email        *string   `db:"email" json:"email,omitempty"`
	EmailActive  bool      `db:"email_active" json:"email_active"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	PasswordSalt []byte    `db:"password_salt" json:"-"`
	DefaultAddressID *int64 `db:"default_address_id" json:"default_address_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// MaskedMobile hides the middle four digits for display in recovery flows.
func (u *User) MaskedMobile() string {
	if len(u.Mobile) != 11 {
		return u.Mobile
	}
	return u.Mobile[:3] + "****" + u.Mobile[7:]
}
