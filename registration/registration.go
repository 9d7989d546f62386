package registration

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"storefront/apperrors"
	"storefront/kvstore"
	"storefront/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const WelcomeMessage = "Welcome to our store"

// Registrant is the record kept per registered email.
type Registrant struct {
	UserID       uuid.UUID `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Service claims emails in a key-value store so two registrations for the
// same address cannot both succeed, and greets new users.
type Service struct {
	store    kvstore.Store
	notifier notification.Notifier
	ttl      time.Duration
	log      *zap.Logger
}

func NewService(store kvstore.Store, notifier notification.Notifier, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, ttl: ttl, log: log}
}

func key(email string) string {
	return "registrant:" + strings.ToLower(strings.TrimSpace(email))
}

// Reserve claims r.Email. It fails with Conflict if the email is already claimed.
func (s *Service) Reserve(ctx context.Context, r Registrant) error {
	if r.RegisteredAt.IsZero() {
		r.RegisteredAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	ok, err := s.store.SetNX(ctx, key(r.Email), data, s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Conflict("User with this email already exists")
	}
	return nil
}

// Release frees a claim, e.g. when persisting the user failed.
func (s *Service) Release(ctx context.Context, email string) error {
	return s.store.Delete(ctx, key(email))
}

func (s *Service) Lookup(ctx context.Context, email string) (*Registrant, error) {
	data, err := s.store.Get(ctx, key(email))
	if errors.Is(err, kvstore.ErrMiss) {
		return nil, apperrors.NotFound("Registrant")
	}
	if err != nil {
		return nil, err
	}

	var r Registrant
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Welcome notifies the new user. Failures are logged, not returned; the
// registration itself already succeeded.
func (s *Service) Welcome(ctx context.Context, r Registrant) {
	if err := s.notifier.Send(ctx, WelcomeMessage, r.Email); err != nil {
		s.log.Warn("Failed to send welcome notification", zap.String("email", r.Email), zap.Error(err))
	}
}
