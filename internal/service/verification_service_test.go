package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/token"
)

func newTokenService() *token.Service {
	return token.NewService("test-secret", map[string]time.Duration{
		token.ScopeSMSSend:       5 * time.Minute,
		token.ScopePasswordReset: 30 * time.Minute,
	})
}

func newVerificationServiceForTests(store *fakeCodeStore, users *fakeUserRepo, sms *fakeDispatcher) *VerificationService {
	if store == nil {
		store = newFakeCodeStore()
	}
	if users == nil {
		users = newFakeUserRepo()
	}
	if sms == nil {
		sms = &fakeDispatcher{}
	}
	return NewVerificationService(
		store,
		&fakeCaptcha{text: "7gk3", image: []byte("png-bytes")},
		newTokenService(),
		sms,
		users,
		VerificationConfig{
			ImageCodeTTL: 5 * time.Minute,
			SMSCodeTTL:   5 * time.Minute,
			SendCooldown: time.Minute,
		},
	)
}

func TestGenerateImageCodeStoresAnswer(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	svc := newVerificationServiceForTests(store, nil, nil)

	image, err := svc.GenerateImageCode(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(image) != "png-bytes" {
		t.Fatalf("unexpected image bytes: %q", image)
	}
	if store.data["img_abc"] != "7gk3" {
		t.Fatalf("expected stored answer under img_abc, got %q", store.data["img_abc"])
	}
	if store.ttls["img_abc"] != 5*time.Minute {
		t.Fatalf("expected 5m TTL, got %v", store.ttls["img_abc"])
	}
}

func TestCheckImageCodeIsCaseInsensitiveAndSingleUse(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	svc := newVerificationServiceForTests(store, nil, nil)

	if _, err := svc.GenerateImageCode(ctx, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CheckImageCode(ctx, "abc", "7GK3", ""); err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}

	// The challenge was deleted on first use; the exact answer fails now.
	if err := svc.CheckImageCode(ctx, "abc", "7gk3", ""); !errors.Is(err, ErrImageCodeInvalid) {
		t.Fatalf("expected ErrImageCodeInvalid on reuse, got %v", err)
	}
}

func TestCheckImageCodeDeletesBeforeComparing(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	svc := newVerificationServiceForTests(store, nil, nil)

	if _, err := svc.GenerateImageCode(ctx, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CheckImageCode(ctx, "abc", "wrong", ""); !errors.Is(err, ErrImageCodeMismatch) {
		t.Fatalf("expected ErrImageCodeMismatch, got %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "img_abc" {
		t.Fatalf("expected challenge deleted despite mismatch, got %v", store.deleted)
	}
	// A failed attempt burns the challenge too.
	if err := svc.CheckImageCode(ctx, "abc", "7gk3", ""); !errors.Is(err, ErrImageCodeInvalid) {
		t.Fatalf("expected ErrImageCodeInvalid after burn, got %v", err)
	}
}

func TestCheckImageCodeMissingChallenge(t *testing.T) {
	svc := newVerificationServiceForTests(nil, nil, nil)

	err := svc.CheckImageCode(context.Background(), "never-issued", "7gk3", "")
	if !errors.Is(err, ErrImageCodeInvalid) {
		t.Fatalf("expected ErrImageCodeInvalid, got %v", err)
	}
}

func TestSendSMSCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	sms := &fakeDispatcher{}
	svc := newVerificationServiceForTests(store, nil, sms)

	if _, err := svc.GenerateImageCode(ctx, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendSMSCode(ctx, "13800000000", "abc", "7gk3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, ok := store.data["sms_13800000000"]
	if !ok || len(code) != 6 {
		t.Fatalf("expected 6-digit code stored, got %q", code)
	}
	if store.data["send_flag_13800000000"] != "1" {
		t.Fatal("expected send flag to be set")
	}
	if store.ttls["sms_13800000000"] != 5*time.Minute || store.ttls["send_flag_13800000000"] != time.Minute {
		t.Fatalf("unexpected TTLs: %v", store.ttls)
	}
	if len(store.pipelines) != 1 || len(store.pipelines[0]) != 2 {
		t.Fatalf("expected code and flag written in one pipeline, got %v", store.pipelines)
	}
	if len(sms.enqueued) != 1 {
		t.Fatalf("expected one enqueue, got %d", len(sms.enqueued))
	}
	if sms.enqueued[0].mobile != "13800000000" || sms.enqueued[0].code != code || sms.enqueued[0].expireMinutes != 5 {
		t.Fatalf("unexpected enqueue: %+v", sms.enqueued[0])
	}
}

func TestSendSMSCodeCooldown(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	svc := newVerificationServiceForTests(store, nil, nil)

	if _, err := svc.GenerateImageCode(ctx, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendSMSCode(ctx, "13800000000", "first", "7gk3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh, correct challenge still cannot beat the cooldown.
	if _, err := svc.GenerateImageCode(ctx, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendSMSCode(ctx, "13800000000", "second", "7gk3"); !errors.Is(err, ErrSendTooFrequent) {
		t.Fatalf("expected ErrSendTooFrequent, got %v", err)
	}

	// Once the flag lapses the send goes through again.
	store.expire("send_flag_13800000000")
	if _, err := svc.GenerateImageCode(ctx, "third"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendSMSCode(ctx, "13800000000", "third", "7gk3"); err != nil {
		t.Fatalf("expected send after cooldown, got %v", err)
	}
}

func TestSendSMSCodeRejectsBadMobile(t *testing.T) {
	svc := newVerificationServiceForTests(nil, nil, nil)

	err := svc.SendSMSCode(context.Background(), "12345", "abc", "7gk3")
	if !errors.Is(err, ErrInvalidMobile) {
		t.Fatalf("expected ErrInvalidMobile, got %v", err)
	}
}

func TestSendSMSCodeByToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	sms := &fakeDispatcher{}
	svc := newVerificationServiceForTests(store, nil, sms)

	accessToken, err := svc.tokens.Issue(token.ScopeSMSSend, "13800000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.SendSMSCodeByToken(ctx, accessToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sms.enqueued) != 1 || sms.enqueued[0].mobile != "13800000000" {
		t.Fatalf("unexpected enqueues: %+v", sms.enqueued)
	}

	t.Run("cooldown applies", func(t *testing.T) {
		if err := svc.SendSMSCodeByToken(ctx, accessToken); !errors.Is(err, ErrSendTooFrequent) {
			t.Fatalf("expected ErrSendTooFrequent, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if err := svc.SendSMSCodeByToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("reset token is not a send token", func(t *testing.T) {
		wrongScope, err := svc.tokens.Issue(token.ScopePasswordReset, "5")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := svc.SendSMSCodeByToken(ctx, wrongScope); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestIssueSMSToken(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	users := newFakeUserRepo(&domain.User{ID: 5, Username: "meiduo_user", Mobile: "13800000000"})
	svc := newVerificationServiceForTests(store, users, nil)

	if _, err := svc.GenerateImageCode(ctx, "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.IssueSMSToken(ctx, "meiduo_user", "abc", "7gk3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Mobile != "138****0000" {
		t.Fatalf("expected masked mobile, got %q", result.Mobile)
	}
	subject, err := svc.tokens.Validate(token.ScopeSMSSend, result.AccessToken)
	if err != nil || subject != "13800000000" {
		t.Fatalf("expected sms-send token for mobile, got subject=%q err=%v", subject, err)
	}

	t.Run("lookup by mobile", func(t *testing.T) {
		if _, err := svc.GenerateImageCode(ctx, "xyz"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.IssueSMSToken(ctx, "13800000000", "xyz", "7gk3"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		if _, err := svc.GenerateImageCode(ctx, "gone"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.IssueSMSToken(ctx, "nobody99", "gone", "7gk3"); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("challenge gate first", func(t *testing.T) {
		if _, err := svc.IssueSMSToken(ctx, "meiduo_user", "missing", "7gk3"); !errors.Is(err, ErrImageCodeInvalid) {
			t.Fatalf("expected ErrImageCodeInvalid, got %v", err)
		}
	})
}

func TestVerifySMSCode(t *testing.T) {
	ctx := context.Background()
	store := newFakeCodeStore()
	users := newFakeUserRepo(&domain.User{ID: 5, Username: "meiduo_user", Mobile: "13800000000"})
	svc := newVerificationServiceForTests(store, users, nil)

	t.Run("no code issued", func(t *testing.T) {
		if _, err := svc.VerifySMSCode(ctx, "meiduo_user", "123456"); !errors.Is(err, ErrSMSCodeExpired) {
			t.Fatalf("expected ErrSMSCodeExpired, got %v", err)
		}
	})

	store.data["sms_13800000000"] = "123456"

	t.Run("wrong code", func(t *testing.T) {
		if _, err := svc.VerifySMSCode(ctx, "meiduo_user", "654321"); !errors.Is(err, ErrSMSCodeMismatch) {
			t.Fatalf("expected ErrSMSCodeMismatch, got %v", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		if _, err := svc.VerifySMSCode(ctx, "nobody99", "123456"); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})

	result, err := svc.VerifySMSCode(ctx, "meiduo_user", "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserID != 5 {
		t.Fatalf("expected user 5, got %d", result.UserID)
	}
	if err := svc.tokens.ValidateSubject(token.ScopePasswordReset, result.AccessToken, "5"); err != nil {
		t.Fatalf("expected valid reset token for user 5: %v", err)
	}

	// Codes are consumed by TTL, not by a successful check.
	if _, err := svc.VerifySMSCode(ctx, "meiduo_user", "123456"); err != nil {
		t.Fatalf("expected code to remain until TTL, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo(&domain.User{ID: 5, Username: "meiduo_user", Mobile: "13800000000"})
	svc := newVerificationServiceForTests(nil, users, nil)

	resetToken, err := svc.tokens.Issue(token.ScopePasswordReset, "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("password mismatch wins over token checks", func(t *testing.T) {
		err := svc.ResetPassword(ctx, 5, "newpass123", "different123", "garbage-token")
		if !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("policy check before token check", func(t *testing.T) {
		err := svc.ResetPassword(ctx, 5, "short", "short", "garbage-token")
		if err == nil || errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected policy error before token validation, got %v", err)
		}
	})

	t.Run("token for another user", func(t *testing.T) {
		err := svc.ResetPassword(ctx, 7, "newpass123", "newpass123", resetToken)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	if err := svc.ResetPassword(ctx, 5, "newpass123", "newpass123", resetToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.updatePasswordInput.id != 5 {
		t.Fatalf("expected password update for user 5, got %d", users.updatePasswordInput.id)
	}
	if len(users.updatePasswordInput.hash) == 0 || len(users.updatePasswordInput.salt) == 0 {
		t.Fatal("expected hash and salt to be stored")
	}
}
