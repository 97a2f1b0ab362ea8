package registration

import (
	"context"
	"time"

	"github.com/calligro/registration-api/internal/domain"
	"github.com/calligro/registration-api/internal/pkg/id"
)

// notifyTimeout bounds the detached trigger dispatch so a stalled transport
// cannot leak goroutines forever.
const notifyTimeout = 10 * time.Second

// UserStore is the persistence surface the registration flow needs.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type Service interface {
	// Register stores a new user record and fires the creation trigger.
	// The trigger runs detached and can never fail the registration.
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateStatus(ctx context.Context, userID, status string) (*domain.User, error)
	RegisterPushToken(ctx context.Context, userID, token string) error
}

type service struct {
	users    UserStore
	notifier *Notifier
}

func NewService(users UserStore, notifier *Notifier) Service {
	return &service{users: users, notifier: notifier}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Status:    initialStatus(req.Role),
		FCMToken:  req.FCMToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}

	// Creation trigger. Detached from the request context so the caller's
	// response never waits on, or fails because of, the fan-out.
	go func(u domain.User) {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notifier.HandleUserCreated(ctx, &u)
	}(*u)

	return u, nil
}

// Teachers wait for admin approval; everyone else is active immediately.
func initialStatus(role string) string {
	if role == domain.RoleTeacher {
		return domain.StatusPending
	}
	return domain.StatusApproved
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	if err := s.users.Update(ctx, userID, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}

func (s *service) RegisterPushToken(ctx context.Context, userID, token string) error {
	return s.users.Update(ctx, userID, map[string]interface{}{"fcm_token": token})
}
