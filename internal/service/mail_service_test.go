package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to, subject, body string
}

func newMailEnv(t *testing.T) (*testEnv, *MailService, *capturedMail) {
	t.Helper()
	env := newTestEnv(t)
	require.NoError(t, env.configs.SetAll(map[string]string{
		CfgEmailVerificationEnabled: "true",
		CfgSMTPHost:                 "smtp.example.com",
		CfgSMTPUser:                 "mailer",
		CfgSMTPFromEmail:            "noreply@example.com",
	}))

	captured := &capturedMail{}
	send := func(host, port, user, password, from, to, subject, body string) error {
		captured.to = to
		captured.subject = subject
		captured.body = body
		return nil
	}
	mail := NewMailService(env.db, env.configs, secrets.Static{secrets.KeySMTPPassword: "smtp-pass"}, send)
	return env, mail, captured
}

func TestEmailVerificationFlow(t *testing.T) {
	env, mail, captured := newMailEnv(t)
	ctx := context.Background()

	require.NoError(t, mail.SendCode(ctx, "seeker@example.com"))
	assert.Equal(t, "seeker@example.com", captured.to)

	var record models.EmailVerificationCode
	require.NoError(t, env.db.Where("email = ? AND used = ?", "seeker@example.com", false).
		First(&record).Error)
	require.Len(t, record.Code, 6)
	assert.Contains(t, captured.body, record.Code)

	t.Run("wrong code fails", func(t *testing.T) {
		err := mail.VerifyCode("seeker@example.com", "000000x")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("correct code verifies once", func(t *testing.T) {
		require.NoError(t, mail.VerifyCode("seeker@example.com", record.Code))
		// Consumed: second use fails.
		err := mail.VerifyCode("seeker@example.com", record.Code)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})
}

func TestEmailCodeExpiry(t *testing.T) {
	env, mail, _ := newMailEnv(t)
	require.NoError(t, mail.SendCode(context.Background(), "slow@example.com"))

	var record models.EmailVerificationCode
	require.NoError(t, env.db.Where("email = ?", "slow@example.com").First(&record).Error)
	require.NoError(t, env.db.Model(&record).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err := mail.VerifyCode("slow@example.com", record.Code)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestEmailResendInvalidatesPrevious(t *testing.T) {
	env, mail, _ := newMailEnv(t)
	ctx := context.Background()

	require.NoError(t, mail.SendCode(ctx, "eager@example.com"))
	var first models.EmailVerificationCode
	require.NoError(t, env.db.Where("email = ? AND used = ?", "eager@example.com", false).
		First(&first).Error)

	require.NoError(t, mail.SendCode(ctx, "eager@example.com"))

	err := mail.VerifyCode("eager@example.com", first.Code)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestMailDeliveryBreaker(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.configs.SetAll(map[string]string{
		CfgEmailVerificationEnabled: "true",
		CfgSMTPHost:                 "smtp.example.com",
		CfgSMTPUser:                 "mailer",
		CfgSMTPFromEmail:            "noreply@example.com",
	}))

	attempts := 0
	mail := NewMailService(env.db, env.configs, secrets.Static{secrets.KeySMTPPassword: "smtp-pass"},
		func(host, port, user, password, from, to, subject, body string) error {
			attempts++
			return errors.New("relay refused connection")
		})

	for i := 0; i < 5; i++ {
		err := mail.SendCode(context.Background(), "x@example.com")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
	}

	// Breaker open: the relay is no longer dialed.
	before := attempts
	err := mail.SendCode(context.Background(), "x@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
	assert.Equal(t, before, attempts)
}

func TestMailDisabledAndMisconfigured(t *testing.T) {
	t.Run("disabled feature rejects sends", func(t *testing.T) {
		env := newTestEnv(t)
		mail := NewMailService(env.db, env.configs, secrets.Static{}, func(host, port, user, password, from, to, subject, body string) error {
			t.Fatal("send must not be called when disabled")
			return nil
		})
		err := mail.SendCode(context.Background(), "x@example.com")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("missing smtp settings are an upstream failure", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.configs.Set(CfgEmailVerificationEnabled, "true"))
		mail := NewMailService(env.db, env.configs, secrets.Static{}, func(host, port, user, password, from, to, subject, body string) error {
			return nil
		})
		err := mail.SendCode(context.Background(), "x@example.com")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
	})
}
