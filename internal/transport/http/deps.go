package http

import (
	"context"

	"github.com/calligro/registration-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	// ListByRole resolves notification recipients via the `role-index` GSI.
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// OtpRepository is the minimal interface the router requires from the OTP store.
type OtpRepository interface {
	Put(ctx context.Context, o *domain.EmailOtp) error
	Get(ctx context.Context, email string) (*domain.EmailOtp, error)
	Consume(ctx context.Context, email, code string) (bool, error)
}

// Mailer sends transactional emails. Nil when the Brevo key is missing;
// only the OTP send path cares.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// PushSender fans one notification out to many device tokens. Nil when the
// push transport is unavailable; the notifier degrades to a logged no-op.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (*domain.MulticastResult, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo   UserRepository
	OtpRepo    OtpRepository
	Mailer     Mailer
	PushSender PushSender
}
