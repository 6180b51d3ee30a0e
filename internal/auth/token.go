package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-analytics/internal/model"
)

const issuer = "geo-analytics"

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issue signs an HS256 token for u.
func (s *Service) issue(u *model.User) (string, time.Time, error) {
	now := s.clock.Now().UTC()
	expiresAt := now.Add(s.ttl).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, eris.Wrap(err, "auth: sign token")
	}
	return signed, expiresAt, nil
}

// parse verifies signature, algorithm, issuer and expiry against the
// service clock.
func (s *Service) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, eris.Wrap(err, "auth: parse token")
	}
	if c.Subject == "" || c.ID == "" {
		return nil, eris.New("auth: token missing subject or id")
	}
	return &c, nil
}
