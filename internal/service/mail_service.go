package service

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/smtp"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/resilience"
	"github.com/dikoweii/XianTu/pkg/secrets"

	"gorm.io/gorm"
)

// SendFunc delivers a rendered email. Tests swap it out to capture the
// message instead of talking to an SMTP server.
type SendFunc func(host, port, user, password, from, to, subject, body string) error

// MailService issues and checks emailed verification codes. The feature is
// gated by system config and all SMTP settings are read fresh per send.
// Delivery runs through a circuit breaker, keeping a dead SMTP relay from
// tying up every registration attempt.
type MailService struct {
	db      *gorm.DB
	config  *SystemConfigService
	secrets secrets.Manager
	send    SendFunc
	breaker *resilience.Breaker
}

// NewMailService creates a mail service. A nil send uses implicit-TLS SMTP.
func NewMailService(db *gorm.DB, config *SystemConfigService, sm secrets.Manager, send SendFunc) *MailService {
	if send == nil {
		send = sendSMTPS
	}
	return &MailService{
		db:      db,
		config:  config,
		secrets: sm,
		send:    send,
		breaker: resilience.New(resilience.DefaultConfig("smtp"), nil),
	}
}

// Enabled reports whether email verification is currently required.
func (s *MailService) Enabled() bool {
	return s.config.GetBool(CfgEmailVerificationEnabled)
}

// generateNumericCode returns a 6-digit code from crypto/rand.
func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode issues a fresh verification code to the address, invalidating any
// previous unused codes for it, and delivers it over SMTP.
func (s *MailService) SendCode(ctx context.Context, email string) error {
	if !s.Enabled() {
		return apperrors.Validation("email verification is not enabled")
	}
	if email == "" {
		return apperrors.Validation("email address is required")
	}

	code, err := generateNumericCode()
	if err != nil {
		return err
	}
	expireMinutes := s.config.GetInt(CfgEmailCodeExpireMinutes, 10)
	if expireMinutes <= 0 {
		expireMinutes = 10
	}

	record := &models.EmailVerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(time.Duration(expireMinutes) * time.Minute),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.EmailVerificationCode{}).
			Where("email = ? AND used = ?", email, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return err
	}

	host := s.config.Get(CfgSMTPHost)
	port := s.config.Get(CfgSMTPPort)
	user := s.config.Get(CfgSMTPUser)
	fromEmail := s.config.Get(CfgSMTPFromEmail)
	fromName := s.config.Get(CfgSMTPFromName)
	password, _ := s.secrets.GetSecret(ctx, secrets.KeySMTPPassword)
	if host == "" || user == "" || fromEmail == "" || password == "" {
		return apperrors.Upstream("email delivery is misconfigured")
	}

	subject := fmt.Sprintf("%s 验证码", fromName)
	body := fmt.Sprintf("您的验证码是 %s，%d 分钟内有效。", code, expireMinutes)
	from := fmt.Sprintf("%s <%s>", fromName, fromEmail)
	err = s.breaker.Do(func() error {
		return s.send(host, port, user, password, from, email, subject, body)
	})
	if errors.Is(err, resilience.ErrOpen) {
		return apperrors.Upstream("email delivery is temporarily unavailable, try again later")
	}
	if err != nil {
		return apperrors.Upstream("verification email could not be delivered")
	}
	return nil
}

// VerifyCode consumes a pending code. A matching unused, unexpired code is
// marked used; anything else fails.
func (s *MailService) VerifyCode(email, code string) error {
	if email == "" || code == "" {
		return apperrors.Validation("email and code are required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var record models.EmailVerificationCode
		err := lockForUpdate(tx).
			Where("email = ? AND code = ? AND used = ?", email, code, false).
			Order("id DESC").
			First(&record).Error
		if err != nil {
			return apperrors.Validation("verification code is incorrect")
		}
		if time.Now().After(record.ExpiresAt) {
			return apperrors.Validation("verification code has expired")
		}
		return tx.Model(&record).Update("used", true).Error
	})
}

// PurgeExpired removes stale codes; intended for a periodic janitor.
func (s *MailService) PurgeExpired() error {
	return s.db.Where("expires_at < ?", time.Now()).
		Delete(&models.EmailVerificationCode{}).Error
}

// sendSMTPS sends a message over implicit TLS, the mode used by the default
// smtp.qq.com:465 configuration.
func sendSMTPS(host, port, user, password, from, to, subject, body string) error {
	addr := net.JoinHostPort(host, port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", user, password, host)); err != nil {
		return err
	}
	fromAddr := extractAddr(from)
	if err := client.Mail(fromAddr); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// extractAddr pulls the bare address out of a "Name <addr>" header value.
func extractAddr(from string) string {
	for i := 0; i < len(from); i++ {
		if from[i] == '<' {
			for j := i + 1; j < len(from); j++ {
				if from[j] == '>' {
					return from[i+1 : j]
				}
			}
		}
	}
	return from
}
