package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/token"
	"github.com/zhli-dev/meiduo-backend/internal/util"
)

type fakeMailer struct {
	sentTo   []string
	sentURLs []string
	err      error
}

func (f *fakeMailer) SendVerifyEmail(ctx context.Context, email, verifyURL string) error {
	f.sentTo = append(f.sentTo, email)
	f.sentURLs = append(f.sentURLs, verifyURL)
	return f.err
}

func newFullTokenService() *token.Service {
	return token.NewService("test-secret", map[string]time.Duration{
		token.ScopeSMSSend:       5 * time.Minute,
		token.ScopePasswordReset: 30 * time.Minute,
		token.ScopeOAuthBind:     10 * time.Minute,
		token.ScopeEmailVerify:   24 * time.Hour,
	})
}

func newTestJWTManager() *util.JWTManager {
	return util.NewJWTManager("test-secret", time.Hour)
}

func newUserServiceForTests(users *fakeUserRepo, store *fakeCodeStore, mailer *fakeMailer) *UserService {
	if users == nil {
		users = newFakeUserRepo()
	}
	if store == nil {
		store = newFakeCodeStore()
	}
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	return NewUserService(users, store, newTestJWTManager(), newFullTokenService(), mailer, "http://www.meiduo.site:8080/success_verify_email.html")
}

func newTestUser(t *testing.T, id int64, username, mobile, password string) *domain.User {
	t.Helper()
	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		t.Fatalf("derive password: %v", err)
	}
	return &domain.User{ID: id, Username: username, Mobile: mobile, PasswordHash: hash, PasswordSalt: salt}
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:  "meiduo_fan",
		Password:  "hunter22pass",
		Password2: "hunter22pass",
		SMSCode:   "123456",
		Mobile:    "13800000000",
		Allow:     true,
	}
}

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	store := newFakeCodeStore()
	store.data["sms_13800000000"] = "123456"
	svc := newUserServiceForTests(users, store, nil)

	result, err := svc.Register(ctx, validRegisterInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.User.Username != "meiduo_fan" {
		t.Fatalf("unexpected username %q", result.User.Username)
	}
	if len(users.createCalls) != 1 || users.createCalls[0].mobile != "13800000000" {
		t.Fatalf("unexpected create calls: %+v", users.createCalls)
	}

	claims, err := newTestJWTManager().Parse(result.Token)
	if err != nil {
		t.Fatalf("session token does not parse: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("token user_id = %d, want %d", claims.UserID, result.User.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"short username", func(in *RegisterInput) { in.Username = "ab" }, ErrInvalidUsername},
		{"username with spaces", func(in *RegisterInput) { in.Username = "bad name!" }, ErrInvalidUsername},
		{"passwords differ", func(in *RegisterInput) { in.Password2 = "hunter22other" }, ErrPasswordMismatch},
		{"agreement unchecked", func(in *RegisterInput) { in.Allow = false }, ErrAgreementRequired},
		{"mobile too short", func(in *RegisterInput) { in.Mobile = "1380000000" }, ErrInvalidMobile},
		{"mobile bad prefix", func(in *RegisterInput) { in.Mobile = "12800000000" }, ErrInvalidMobile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newUserServiceForTests(nil, nil, nil)
			in := validRegisterInput()
			tc.mutate(&in)
			if _, err := svc.Register(ctx, in); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("short password", func(t *testing.T) {
		svc := newUserServiceForTests(nil, nil, nil)
		in := validRegisterInput()
		in.Password = "short"
		in.Password2 = "short"
		if _, err := svc.Register(ctx, in); err == nil {
			t.Fatal("expected password policy error")
		}
	})
}

func TestRegisterChecksSMSCode(t *testing.T) {
	ctx := context.Background()

	t.Run("expired", func(t *testing.T) {
		svc := newUserServiceForTests(nil, newFakeCodeStore(), nil)
		if _, err := svc.Register(ctx, validRegisterInput()); !errors.Is(err, ErrSMSCodeExpired) {
			t.Fatalf("got %v, want ErrSMSCodeExpired", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		store := newFakeCodeStore()
		store.data["sms_13800000000"] = "654321"
		svc := newUserServiceForTests(nil, store, nil)
		if _, err := svc.Register(ctx, validRegisterInput()); !errors.Is(err, ErrSMSCodeMismatch) {
			t.Fatalf("got %v, want ErrSMSCodeMismatch", err)
		}
	})
}

func TestRegisterMapsUniqueViolations(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{"duplicate mobile", "tb_users_mobile_key", ErrMobileTaken},
		{"duplicate username", "tb_users_username_key", ErrUsernameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newFakeUserRepo()
			users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			store := newFakeCodeStore()
			store.data["sms_13800000000"] = "123456"
			svc := newUserServiceForTests(users, store, nil)

			if _, err := svc.Register(ctx, validRegisterInput()); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass")
	svc := newUserServiceForTests(newFakeUserRepo(user), nil, nil)

	t.Run("by username", func(t *testing.T) {
		result, err := svc.Login(ctx, "meiduo_fan", "hunter22pass")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.User.ID != 5 {
			t.Fatalf("unexpected user: %+v", result.User)
		}
	})

	t.Run("by mobile", func(t *testing.T) {
		if _, err := svc.Login(ctx, "13800000000", "hunter22pass"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(ctx, "meiduo_fan", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		if _, err := svc.Login(ctx, "nobody_here", "hunter22pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("got %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass")
	svc := newUserServiceForTests(newFakeUserRepo(user), nil, nil)

	signed, _, err := newTestJWTManager().Generate(5, "meiduo_fan", "13800000000")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	got, err := svc.Authenticate(ctx, signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.Authenticate(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}

	deleted, _, err := newTestJWTManager().Generate(99, "ghost", "13911112222")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.Authenticate(ctx, deleted); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v for missing user, want ErrInvalidToken", err)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass")
	svc := newUserServiceForTests(newFakeUserRepo(user), nil, nil)

	if n, _ := svc.UsernameCount(ctx, "meiduo_fan"); n != 1 {
		t.Fatalf("username count = %d, want 1", n)
	}
	if n, _ := svc.UsernameCount(ctx, "fresh_name"); n != 0 {
		t.Fatalf("username count = %d, want 0", n)
	}
	if n, _ := svc.MobileCount(ctx, "13800000000"); n != 1 {
		t.Fatalf("mobile count = %d, want 1", n)
	}
}

func TestSetEmailSendsVerificationLink(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass"))
	mailer := &fakeMailer{}
	svc := newUserServiceForTests(users, nil, mailer)

	if err := svc.SetEmail(ctx, 5, "fan@meiduo.site"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.updateEmailInput.email != "fan@meiduo.site" || users.updateEmailInput.id != 5 {
		t.Fatalf("unexpected update: %+v", users.updateEmailInput)
	}
	if len(mailer.sentTo) != 1 || mailer.sentTo[0] != "fan@meiduo.site" {
		t.Fatalf("unexpected recipients: %v", mailer.sentTo)
	}

	// The mailed link carries a token that resolves back to the user.
	idx := strings.Index(mailer.sentURLs[0], "?token=")
	if idx < 0 {
		t.Fatalf("no token in verify URL %q", mailer.sentURLs[0])
	}
	subject, err := newFullTokenService().Validate(token.ScopeEmailVerify, mailer.sentURLs[0][idx+len("?token="):])
	if err != nil {
		t.Fatalf("verify token invalid: %v", err)
	}
	if subject != "5" {
		t.Fatalf("token subject = %q, want 5", subject)
	}
}

func TestSetEmailRejectsMalformedAddress(t *testing.T) {
	svc := newUserServiceForTests(nil, nil, nil)
	if err := svc.SetEmail(context.Background(), 5, "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("got %v, want ErrInvalidEmail", err)
	}
}

func TestSetEmailSurvivesMailerFailure(t *testing.T) {
	users := newFakeUserRepo(newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass"))
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := newUserServiceForTests(users, nil, mailer)

	if err := svc.SetEmail(context.Background(), 5, "fan@meiduo.site"); err != nil {
		t.Fatalf("mailer failure should not fail the call: %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(newTestUser(t, 5, "meiduo_fan", "13800000000", "hunter22pass"))
	svc := newUserServiceForTests(users, nil, nil)

	verifyToken, err := newFullTokenService().Issue(token.ScopeEmailVerify, "5")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if err := svc.VerifyEmail(ctx, verifyToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users.emailActivated) != 1 || users.emailActivated[0] != 5 {
		t.Fatalf("unexpected activations: %v", users.emailActivated)
	}

	if err := svc.VerifyEmail(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
