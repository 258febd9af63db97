package domain

import "time"

// OAuthQQUser binds a QQ openid to a local user account.
type OAuthQQUser struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	OpenID    string    `db:"openid" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
