package service

import "errors"

var (
	// Verification protocol failures.
	ErrImageCodeInvalid  = errors.New("image code expired or unknown")
	ErrImageCodeMismatch = errors.New("image code mismatch")
	ErrSendTooFrequent   = errors.New("sms sent too frequently")
	ErrSMSCodeExpired    = errors.New("no valid sms code issued")
	ErrSMSCodeMismatch   = errors.New("sms code mismatch")
	ErrInvalidToken      = errors.New("invalid access token")
	ErrAccountNotFound   = errors.New("account not found")
	ErrPasswordMismatch  = errors.New("passwords do not match")

	// Account failures.
	ErrInvalidUsername    = errors.New("username must be 5-20 word characters")
	ErrInvalidMobile      = errors.New("invalid mobile number")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrAgreementRequired  = errors.New("user agreement must be accepted")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrMobileTaken        = errors.New("mobile already registered")
	ErrInvalidCredentials = errors.New("invalid account or password")

	// Address book failures.
	ErrAddressNotFound = errors.New("address not found")
	ErrAddressLimit    = errors.New("address book limit reached")

	// Regional data failures.
	ErrAreaNotFound = errors.New("area not found")
)
