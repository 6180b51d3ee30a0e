// Package auth registers users, issues signed session tokens and resolves
// tokens back into identities.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/model"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/store"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("Login failed. Please check your credentials.") //nolint:staticcheck // shown to users
	// ErrUnauthenticated is returned for any token that does not resolve to a
	// live identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Service implements sign-up, sign-in, sign-out and token verification.
type Service struct {
	store      store.Store
	clock      clockwork.Clock
	metrics    *monitoring.Metrics
	secret     []byte
	ttl        time.Duration
	bcryptCost int
}

// NewService creates an auth service. metrics may be nil.
func NewService(st store.Store, cfg config.AuthConfig, clock clockwork.Clock, metrics *monitoring.Metrics) (*Service, error) {
	if len(cfg.JWTSecret) < config.MinJWTSecretLen {
		return nil, eris.Errorf("auth: jwt secret must be at least %d bytes", config.MinJWTSecretLen)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, eris.Errorf("auth: bcrypt cost %d out of range", cost)
	}
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:      st,
		clock:      clock,
		metrics:    metrics,
		secret:     []byte(cfg.JWTSecret),
		ttl:        ttl,
		bcryptCost: cost,
	}, nil
}

func (s *Service) observe(operation string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(operation, err)
	}
}

// SignUp validates the form, hashes the password and creates the user.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (u *model.User, err error) {
	defer func() { s.observe("signup", err) }()

	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, eris.Wrap(err, "auth: hash password")
	}

	u, err = s.store.CreateUser(ctx, model.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	})
	if errors.Is(err, store.ErrEmailTaken) {
		return nil, store.ErrEmailTaken
	}
	if err != nil {
		return nil, eris.Wrap(err, "auth: create user")
	}

	zap.L().Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// SignIn checks the password and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (sess *Session, err error) {
	defer func() { s.observe("signin", err) }()

	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, eris.Wrap(err, "auth: get user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	zap.L().Info("user signed in", zap.String("user_id", u.ID))
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// SignOut revokes token until it would have expired.
func (s *Service) SignOut(ctx context.Context, token string) (err error) {
	defer func() { s.observe("signout", err) }()

	id, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.store.RevokeToken(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return eris.Wrap(err, "auth: revoke token")
	}

	zap.L().Info("user signed out", zap.String("user_id", id.UserID))
	return nil
}

// Authenticate resolves a token into the identity it was issued for. Any
// failure yields ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	c, err := s.parse(token)
	if err != nil {
		zap.L().Debug("auth: rejected token", zap.Error(err))
		return nil, ErrUnauthenticated
	}

	revoked, err := s.store.IsTokenRevoked(ctx, c.ID)
	if err != nil {
		return nil, eris.Wrap(err, "auth: check revocation")
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return &model.Identity{
		UserID:    c.Subject,
		Email:     c.Email,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}, nil
}

// PurgeRevocations deletes revocations for tokens that have already expired.
func (s *Service) PurgeRevocations(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredRevocations(ctx, s.clock.Now())
	return n, eris.Wrap(err, "auth: purge revocations")
}
