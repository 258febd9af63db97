package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
	"github.com/zhli-dev/meiduo-backend/internal/token"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

// QQAPI is the slice of the QQ Connect client the service needs.
type QQAPI interface {
	AuthorizationURL(state string) string
	GetAccessToken(ctx context.Context, code string) (string, error)
	GetOpenID(ctx context.Context, accessToken string) (string, error)
}

// QQLoginResult is either a finished login (Bound, with session token) or an
// invitation to bind (AccessToken scoped to the openid).
type QQLoginResult struct {
	Bound       bool
	User        *domain.User
	Token       string
	AccessToken string
}

type OAuthQQService struct {
	qq       QQAPI
	bindings ports.OAuthQQRepository
	users    ports.UserRepository
	store    ports.CodeStore
	tokens   *token.Service
	jwt      *util.JWTManager
}

func NewOAuthQQService(
	qq QQAPI,
	bindings ports.OAuthQQRepository,
	users ports.UserRepository,
	store ports.CodeStore,
	tokens *token.Service,
	jwtManager *util.JWTManager,
) *OAuthQQService {
	return &OAuthQQService{
		qq:       qq,
		bindings: bindings,
		users:    users,
		store:    store,
		tokens:   tokens,
		jwt:      jwtManager,
	}
}

func (s *OAuthQQService) AuthorizationURL(state string) string {
	return s.qq.AuthorizationURL(state)
}

// LoginWithCode runs the QQ code exchange. A bound openid logs straight in;
// an unknown one gets a bind token so the follow-up request can attach the
// openid to an account.
func (s *OAuthQQService) LoginWithCode(ctx context.Context, code string) (*QQLoginResult, error) {
	accessToken, err := s.qq.GetAccessToken(ctx, code)
	if err != nil {
		return nil, err
	}
	openid, err := s.qq.GetOpenID(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	binding, err := s.bindings.FindByOpenID(ctx, openid)
	if errors.Is(err, sql.ErrNoRows) {
		bindToken, err := s.tokens.Issue(token.ScopeOAuthBind, openid)
		if err != nil {
			return nil, err
		}
		return &QQLoginResult{Bound: false, AccessToken: bindToken}, nil
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, binding.UserID)
	if err != nil {
		return nil, err
	}
	signed, _, err := s.jwt.Generate(user.ID, user.Username, user.Mobile)
	if err != nil {
		return nil, err
	}
	return &QQLoginResult{Bound: true, User: user, Token: signed}, nil
}

type BindInput struct {
	AccessToken string
	Mobile      string
	Password    string
	SMSCode     string
}

// Bind attaches the openid inside the bind token to an account. An unknown
// mobile creates a fresh account (username defaults to the mobile); a known
// one must prove its password.
func (s *OAuthQQService) Bind(ctx context.Context, in BindInput) (*AuthResult, error) {
	openid, err := s.tokens.Validate(token.ScopeOAuthBind, in.AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !mobilePattern.MatchString(in.Mobile) {
		return nil, ErrInvalidMobile
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	stored, ok, err := s.store.Get(ctx, "sms_"+in.Mobile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSMSCodeExpired
	}
	if stored != in.SMSCode {
		return nil, ErrSMSCodeMismatch
	}

	user, err := s.users.FindByMobile(ctx, in.Mobile)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		hash, salt, derr := util.DerivePassword(in.Password)
		if derr != nil {
			return nil, derr
		}
		user, err = s.users.Create(ctx, in.Mobile, in.Mobile, hash, salt)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !util.VerifyPassword(in.Password, user.PasswordSalt, user.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
	}

	if _, err := s.bindings.Create(ctx, user.ID, openid); err != nil {
		return nil, err
	}

	signed, _, err := s.jwt.Generate(user.ID, user.Username, user.Mobile)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: signed}, nil
}
