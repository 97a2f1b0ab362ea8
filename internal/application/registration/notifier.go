package registration

import (
	"context"
	"log/slog"

	"github.com/calligro/registration-api/internal/domain"
)

// Notification text for the admin fan-out.
const (
	notifTitle    = "New Teacher Registration"
	notifBodyTail = " is waiting for approval."
	notifFallback = "A new teacher"
	eventType     = "new_teacher"
)

// PushSender fans one notification out to many device tokens.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (*domain.MulticastResult, error)
}

// Notifier reacts to user-record creation: when the new record is a pending
// teacher, every admin with a registered push token gets a notification.
type Notifier struct {
	users UserStore
	push  PushSender
}

func NewNotifier(users UserStore, push PushSender) *Notifier {
	return &Notifier{users: users, push: push}
}

// HandleUserCreated is the trigger entry point. It is total: errors and
// panics are logged and swallowed so the caller never fails or redelivers
// the creation event because of notification trouble.
func (n *Notifier) HandleUserCreated(ctx context.Context, u *domain.User) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("notify admins panicked", "user_id", u.UserID, "panic", r)
		}
	}()
	if err := n.notifyAdmins(ctx, u); err != nil {
		slog.Error("notify admins failed", "user_id", u.UserID, "err", err)
	}
}

func (n *Notifier) notifyAdmins(ctx context.Context, u *domain.User) error {
	if u.Role != domain.RoleTeacher || u.Status != domain.StatusPending {
		return nil
	}
	if n.push == nil {
		slog.Warn("push transport not configured, skipping admin notification", "user_id", u.UserID)
		return nil
	}

	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	var tokens []string
	for _, a := range admins {
		if a.FCMToken != "" {
			tokens = append(tokens, a.FCMToken)
		}
	}
	if len(tokens) == 0 {
		slog.Info("no admin push tokens registered", "user_id", u.UserID)
		return nil
	}

	name := u.Name
	if name == "" {
		name = notifFallback
	}
	res, err := n.push.SendMulticast(ctx, tokens, domain.PushMessage{
		Title: notifTitle,
		Body:  name + notifBodyTail,
		Data:  map[string]string{"user_id": u.UserID, "type": eventType},
	})
	if err != nil {
		return err
	}
	for _, o := range res.Outcomes {
		if o.Error != nil {
			slog.Warn("push send failed", "token", o.Token, "err", o.Error)
		}
	}
	slog.Info("admin fan-out complete",
		"user_id", u.UserID,
		"success", res.SuccessCount,
		"failure", res.FailureCount,
	)
	return nil
}
