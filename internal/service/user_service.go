package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
	"github.com/zhli-dev/meiduo-backend/internal/token"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

var (
	usernamePattern = regexp.MustCompile(`^\w{5,20}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const uniqueViolation = "23505"

// VerifyEmailSender delivers the activation link; failures are logged, never
// surfaced.
type VerifyEmailSender interface {
	SendVerifyEmail(ctx context.Context, email, verifyURL string) error
}

type RegisterInput struct {
	Username  string
	Password  string
	Password2 string
	SMSCode   string
	Mobile    string
	Allow     bool
}

type AuthResult struct {
	User  *domain.User
	Token string
}

type UserService struct {
	users  ports.UserRepository
	store  ports.CodeStore
	jwt    *util.JWTManager
	tokens *token.Service
	mailer VerifyEmailSender

	verifyBaseURL string
}

func NewUserService(
	users ports.UserRepository,
	store ports.CodeStore,
	jwtManager *util.JWTManager,
	tokens *token.Service,
	mailer VerifyEmailSender,
	verifyBaseURL string,
) *UserService {
	return &UserService{
		users:         users,
		store:         store,
		jwt:           jwtManager,
		tokens:        tokens,
		mailer:        mailer,
		verifyBaseURL: verifyBaseURL,
	}
}

// Register creates an account once every field and the SMS code check out,
// then logs the new user straight in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !usernamePattern.MatchString(in.Username) {
		return nil, ErrInvalidUsername
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, ErrPasswordMismatch
	}
	if !in.Allow {
		return nil, ErrAgreementRequired
	}
	if !mobilePattern.MatchString(in.Mobile) {
		return nil, ErrInvalidMobile
	}
	if err := s.checkSMSCode(ctx, in.Mobile, in.SMSCode); err != nil {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, in.Username, in.Mobile, hash, salt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "mobile") {
				return nil, ErrMobileTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.login(user)
}

// Login authenticates by username or mobile plus password.
func (s *UserService) Login(ctx context.Context, account, password string) (*AuthResult, error) {
	var (
		user *domain.User
		err  error
	)
	if mobilePattern.MatchString(account) {
		user, err = s.users.FindByMobile(ctx, account)
	} else {
		user, err = s.users.FindByUsername(ctx, account)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.login(user)
}

func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.jwt.Parse(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UsernameCount(ctx context.Context, username string) (int, error) {
	return s.users.CountByUsername(ctx, username)
}

func (s *UserService) MobileCount(ctx context.Context, mobile string) (int, error) {
	return s.users.CountByMobile(ctx, mobile)
}

func (s *UserService) Detail(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return user, err
}

// SetEmail saves the address and mails an activation link. Mail delivery is a
// notification, not a precondition: its failure is logged and the call still
// succeeds.
func (s *UserService) SetEmail(ctx context.Context, userID int64, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if err := s.users.UpdateEmail(ctx, userID, email); err != nil {
		return err
	}

	verifyToken, err := s.tokens.Issue(token.ScopeEmailVerify, strconv.FormatInt(userID, 10))
	if err != nil {
		return err
	}
	verifyURL := s.verifyBaseURL + "?token=" + verifyToken
	if err := s.mailer.SendVerifyEmail(ctx, email, verifyURL); err != nil {
		log.Printf("user: send verify email to %s: %v", email, err)
	}
	return nil
}

// VerifyEmail activates the address named by an email-verify token.
func (s *UserService) VerifyEmail(ctx context.Context, tokenString string) error {
	subject, err := s.tokens.Validate(token.ScopeEmailVerify, tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	return s.users.MarkEmailActive(ctx, userID)
}

func (s *UserService) checkSMSCode(ctx context.Context, mobile, smsCode string) error {
	stored, ok, err := s.store.Get(ctx, "sms_"+mobile)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSMSCodeExpired
	}
	if stored != smsCode {
		return ErrSMSCodeMismatch
	}
	return nil
}

func (s *UserService) login(user *domain.User) (*AuthResult, error) {
	signed, _, err := s.jwt.Generate(user.ID, user.Username, user.Mobile)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: signed}, nil
}
