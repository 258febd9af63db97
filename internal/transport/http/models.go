package http

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"incorrect image code"`
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Username  string `json:"username" example:"meiduo_fan"`
	Password  string `json:"password" example:"StrongPass23"`
	Password2 string `json:"password2" example:"StrongPass23"`
	SMSCode   string `json:"sms_code" example:"123456"`
	Mobile    string `json:"mobile" example:"13800000000"`
	Allow     bool   `json:"allow" example:"true"`
}

// LoginRequest carries username-or-mobile login fields.
type LoginRequest struct {
	Username string `json:"username" example:"meiduo_fan"`
	Password string `json:"password" example:"StrongPass23"`
}

// ResetPasswordRequest carries the payload for a token-authorized password
// reset.
type ResetPasswordRequest struct {
	Password    string `json:"password" example:"NewPass456"`
	Password2   string `json:"password2" example:"NewPass456"`
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// SetEmailRequest carries the email update payload.
type SetEmailRequest struct {
	Email string `json:"email" example:"fan@meiduo.site"`
}

// AddressRequest carries address create/update fields.
type AddressRequest struct {
	Title      string  `json:"title" example:"家"`
	Receiver   string  `json:"receiver" example:"张三"`
	ProvinceID int64   `json:"province_id" example:"110000"`
	CityID     int64   `json:"city_id" example:"110100"`
	DistrictID int64   `json:"district_id" example:"110101"`
	Place      string  `json:"place" example:"长安街1号"`
	Mobile     string  `json:"mobile" example:"13800000000"`
	Tel        *string `json:"tel,omitempty" example:"010-12345678"`
	Email      *string `json:"email,omitempty" example:"fan@meiduo.site"`
}

// AddressTitleRequest carries the title-only update payload.
type AddressTitleRequest struct {
	Title string `json:"title" example:"公司"`
}

// QQBindRequest carries the payload binding a QQ openid to an account.
type QQBindRequest struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Mobile      string `json:"mobile" example:"13800000000"`
	Password    string `json:"password" example:"StrongPass23"`
	SMSCode     string `json:"sms_code" example:"123456"`
}

// UserResponse is the sanitized user representation.
type UserResponse struct {
	ID          int64   `json:"id" example:"5"`
	Username    string  `json:"username" example:"meiduo_fan"`
	Mobile      string  `json:"mobile" example:"13800000000"`
	Email       *string `json:"email,omitempty" example:"fan@meiduo.site"`
	EmailActive bool    `json:"email_active" example:"false"`
}
