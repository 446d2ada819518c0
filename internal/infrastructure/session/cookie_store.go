package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unihome/unihome-api/internal/core/domain"
)

// CookieStore keeps the whole session in the cookie as an HS256-signed JWT
// whose "user" claim is the JSON-encoded public identity.
type CookieStore struct {
	secret []byte
	opts   CookieOptions
	now    func() time.Time
}

type sessionClaims struct {
	User domain.Identity `json:"user"`
	jwt.RegisteredClaims
}

func NewCookieStore(secret string, opts CookieOptions) *CookieStore {
	return &CookieStore{
		secret: []byte(secret),
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

func (s *CookieStore) Create(_ context.Context, w http.ResponseWriter, _ *http.Request, identity *domain.Identity) error {
	if identity == nil {
		return errors.New("create session: nil identity")
	}

	now := s.now()
	claims := sessionClaims{
		User: *identity.Public(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	s.opts.write(w, signed, now)
	return nil
}

// Read never fails: a missing, tampered, expired or malformed cookie is
// reported as no session.
func (s *CookieStore) Read(r *http.Request) (*domain.Identity, error) {
	raw := s.opts.value(r)
	if raw == "" {
		return nil, nil
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return nil, nil
	}
	if claims.User.Email == "" || claims.User.ID == "" {
		return nil, nil
	}

	return claims.User.Public(), nil
}

func (s *CookieStore) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	s.opts.clear(w)
	return nil
}
