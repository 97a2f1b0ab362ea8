package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/calligro/registration-api/internal/domain"
)

// Validity window for issued codes.
const TTL = 10 * time.Minute

// Store is the persistence surface the OTP manager needs.
type Store interface {
	Put(ctx context.Context, o *domain.EmailOtp) error
	Get(ctx context.Context, email string) (*domain.EmailOtp, error)
	// Consume deletes the record iff it still holds code. At most one
	// concurrent caller gets true for the same record.
	Consume(ctx context.Context, email, code string) (bool, error)
}

// Mailer dispatches the code to the user.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type Service interface {
	// Request issues a fresh code for email, replacing any previous one,
	// and mails it. The record is persisted before the send is attempted,
	// so a mail failure still leaves a verifiable code behind.
	Request(ctx context.Context, email string) error
	// Verify checks code against the stored record and consumes it on
	// success. Every rejection reason collapses to false.
	Verify(ctx context.Context, email, code string) (bool, error)
}

type service struct {
	store  Store
	mailer Mailer
}

func NewService(store Store, mailer Mailer) Service {
	return &service{store: store, mailer: mailer}
}

func (s *service) Request(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	if s.mailer == nil {
		return fmt.Errorf("email transport not configured: %w", domain.ErrUnavailable)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	o := &domain.EmailOtp{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(TTL).Unix(),
	}
	if err := s.store.Put(ctx, o); err != nil {
		return err
	}

	body := fmt.Sprintf("Your OTP is %s. It is valid for 10 minutes.", code)
	if err := s.mailer.SendEmail(email, "Your OTP Code", body); err != nil {
		// The record stays: the user can still verify if the mail made it
		// out despite the transport error.
		return fmt.Errorf("send otp email: %w", err)
	}
	slog.Info("otp sent", "email", email)
	return nil
}

func (s *service) Verify(ctx context.Context, email, code string) (bool, error) {
	if email == "" || code == "" {
		return false, nil
	}
	o, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if o.Code != code || o.ExpiresAt <= time.Now().Unix() {
		// Wrong or stale code. The record is left alone so the user can
		// retry within the window.
		return false, nil
	}
	// Conditional delete: a concurrent verifier or a newer Request may have
	// replaced the record since the read, in which case this loses cleanly.
	return s.store.Consume(ctx, email, code)
}

// generateCode draws a uniform 6-digit code from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
