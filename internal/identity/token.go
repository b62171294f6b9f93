package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/url-shortener/internal/shortener"
)

// ErrInvalidToken is returned when a bearer token cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// Verifier turns a bearer token into an owner.
type Verifier interface {
	Verify(token string) (shortener.OwnerID, error)
}

// HS256 signs and verifies HMAC-SHA256 tokens whose subject is the owner id.
type HS256 struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHS256 creates a token service for the given secret and issuer.
func NewHS256(secret, issuer string, ttl time.Duration) (*HS256, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	if issuer == "" {
		return nil, errors.New("jwt issuer is empty")
	}

	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be > 0")
	}

	return &HS256{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Sign issues a token for owner.
func (h *HS256) Sign(owner shortener.OwnerID) (string, error) {
	if owner == "" {
		return "", errors.New("empty owner id")
	}

	now := h.now()
	claims := jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   string(owner),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify checks signature, issuer and expiry and returns the subject.
func (h *HS256) Verify(token string) (shortener.OwnerID, error) {
	var claims jwt.RegisteredClaims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)

	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return shortener.OwnerID(claims.Subject), nil
}

// Compile-time check.
var _ Verifier = (*HS256)(nil)
