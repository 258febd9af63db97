package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
	"github.com/zhli-dev/meiduo-backend/internal/token"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

var mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// CaptchaGenerator produces an image challenge and its answer.
type CaptchaGenerator interface {
	Generate() (text string, image []byte, err error)
}

// SMSDispatcher is the fire-and-forget handoff to the delivery workers.
type SMSDispatcher interface {
	Enqueue(mobile, code string, expireMinutes int)
}

// VerificationConfig carries the protocol windows.
type VerificationConfig struct {
	ImageCodeTTL time.Duration
	SMSCodeTTL   time.Duration
	SendCooldown time.Duration
}

// VerificationService composes the captcha generator, the TTL store, the token
// service, and the SMS dispatcher into the account verification protocol. All
// cross-request state lives in the store; the service itself is stateless.
type VerificationService struct {
	store   ports.CodeStore
	captcha CaptchaGenerator
	tokens  *token.Service
	sms     SMSDispatcher
	users   ports.UserRepository
	cfg     VerificationConfig
}

func NewVerificationService(
	store ports.CodeStore,
	captchaGen CaptchaGenerator,
	tokens *token.Service,
	sms SMSDispatcher,
	users ports.UserRepository,
	cfg VerificationConfig,
) *VerificationService {
	return &VerificationService{
		store:   store,
		captcha: captchaGen,
		tokens:  tokens,
		sms:     sms,
		users:   users,
		cfg:     cfg,
	}
}

// GenerateImageCode creates a challenge under the caller-supplied id and
// returns the rendered image. The id is opaque; a fresh request simply
// overwrites any previous challenge stored under it.
func (s *VerificationService) GenerateImageCode(ctx context.Context, imageCodeID string) ([]byte, error) {
	text, image, err := s.captcha.Generate()
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, "img_"+imageCodeID, text, s.cfg.ImageCodeTTL); err != nil {
		return nil, err
	}
	return image, nil
}

// CheckImageCode validates a challenge submission. The stored answer is
// deleted before it is compared: of two concurrent submissions for the same
// id, at most one can ever see the answer, the other fails with
// ErrImageCodeInvalid. When mobile is non-empty the send-rate flag for that
// number is checked as well, as a precondition for sending an SMS.
func (s *VerificationService) CheckImageCode(ctx context.Context, imageCodeID, text, mobile string) error {
	answer, ok, err := s.store.Get(ctx, "img_"+imageCodeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrImageCodeInvalid
	}

	// Single use, regardless of outcome. Delete errors are swallowed by the
	// store wrapper.
	_ = s.store.Delete(ctx, "img_"+imageCodeID)

	if !strings.EqualFold(answer, text) {
		return ErrImageCodeMismatch
	}

	if mobile != "" {
		if err := s.checkSendFlag(ctx, mobile); err != nil {
			return err
		}
	}
	return nil
}

// SendSMSCode is the captcha-gated send path: the image challenge must check
// out before any code leaves the building.
func (s *VerificationService) SendSMSCode(ctx context.Context, mobile, imageCodeID, text string) error {
	if !mobilePattern.MatchString(mobile) {
		return ErrInvalidMobile
	}
	if err := s.CheckImageCode(ctx, imageCodeID, text, mobile); err != nil {
		return err
	}
	return s.sendCode(ctx, mobile)
}

// SendSMSCodeByToken is the recovery path: a valid sms-send token replaces the
// image challenge. The cooldown still applies.
func (s *VerificationService) SendSMSCodeByToken(ctx context.Context, accessToken string) error {
	mobile, err := s.tokens.Validate(token.ScopeSMSSend, accessToken)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.checkSendFlag(ctx, mobile); err != nil {
		return err
	}
	return s.sendCode(ctx, mobile)
}

// SMSTokenResult carries the recovery token together with the masked mobile
// shown to the user.
type SMSTokenResult struct {
	AccessToken string `json:"access_token"`
	Mobile      string `json:"mobile"`
}

// IssueSMSToken starts account recovery: after a successful image challenge it
// resolves the account and hands back a token authorizing one captcha-free
// SMS send to the account's mobile.
func (s *VerificationService) IssueSMSToken(ctx context.Context, account, imageCodeID, text string) (*SMSTokenResult, error) {
	if err := s.CheckImageCode(ctx, imageCodeID, text, ""); err != nil {
		return nil, err
	}
	user, err := s.resolveAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	accessToken, err := s.tokens.Issue(token.ScopeSMSSend, user.Mobile)
	if err != nil {
		return nil, err
	}
	return &SMSTokenResult{AccessToken: accessToken, Mobile: user.MaskedMobile()}, nil
}

// ResetTokenResult identifies the account a password reset was authorized for.
type ResetTokenResult struct {
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// VerifySMSCode checks the submitted SMS code against the stored one and, on
// success, issues a password-reset token bound to the account. The code is
// read, never deleted; it lapses via TTL.
func (s *VerificationService) VerifySMSCode(ctx context.Context, account, smsCode string) (*ResetTokenResult, error) {
	user, err := s.resolveAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	stored, ok, err := s.store.Get(ctx, "sms_"+user.Mobile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSMSCodeExpired
	}
	if stored != smsCode {
		return nil, ErrSMSCodeMismatch
	}

	accessToken, err := s.tokens.Issue(token.ScopePasswordReset, strconv.FormatInt(user.ID, 10))
	if err != nil {
		return nil, err
	}
	return &ResetTokenResult{UserID: user.ID, AccessToken: accessToken}, nil
}

// ResetPassword commits a new password for userID. The reset token must carry
// exactly this user id; password checks run before any token work so the
// cheap failures surface first.
func (s *VerificationService) ResetPassword(ctx context.Context, userID int64, password, password2, accessToken string) error {
	if password != password2 {
		return ErrPasswordMismatch
	}
	if err := util.ValidatePassword(password); err != nil {
		return err
	}
	if err := s.tokens.ValidateSubject(token.ScopePasswordReset, accessToken, strconv.FormatInt(userID, 10)); err != nil {
		return ErrInvalidToken
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash, salt)
}

func (s *VerificationService) checkSendFlag(ctx context.Context, mobile string) error {
	_, present, err := s.store.Get(ctx, "send_flag_"+mobile)
	if err != nil {
		return err
	}
	if present {
		return ErrSendTooFrequent
	}
	return nil
}

// sendCode stores a fresh code and its cooldown flag in one pipelined write,
// then hands delivery to the workers. By the time this returns the code is
// committed; delivery failure cannot undo it.
func (s *VerificationService) sendCode(ctx context.Context, mobile string) error {
	code, err := util.GenerateSMSCode()
	if err != nil {
		return err
	}

	err = s.store.PutPipeline(ctx,
		ports.Entry{Key: "sms_" + mobile, Value: code, TTL: s.cfg.SMSCodeTTL},
		ports.Entry{Key: "send_flag_" + mobile, Value: "1", TTL: s.cfg.SendCooldown},
	)
	if err != nil {
		return err
	}

	expireMinutes := int((s.cfg.SMSCodeTTL + time.Minute - 1) / time.Minute)
	s.sms.Enqueue(mobile, code, expireMinutes)
	return nil
}

func (s *VerificationService) resolveAccount(ctx context.Context, account string) (*domain.User, error) {
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
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
