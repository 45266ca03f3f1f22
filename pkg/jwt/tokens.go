package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the type claim.
const (
	KindAccess = "access"
	KindAPIKey = "api_key"
)

// ErrMissingSubject is returned when a token carries no subject.
var ErrMissingSubject = errors.New("jwt: missing subject")

// Claims defines JWT payload.
type Claims struct {
	Type string `json:"type,omitempty"`
	jwtlib.RegisteredClaims
}

// Kind returns the token kind, defaulting to access tokens.
func (c Claims) Kind() string {
	if c.Type == "" {
		return KindAccess
	}
	return c.Type
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	method jwtlib.SigningMethod
}

// NewCodec returns a Codec for the named HMAC algorithm.
func NewCodec(secret, algorithm string) (Codec, error) {
	method := jwtlib.GetSigningMethod(algorithm)
	if method == nil {
		return Codec{}, errors.New("jwt: unknown signing algorithm " + algorithm)
	}
	if _, ok := method.(*jwtlib.SigningMethodHMAC); !ok {
		return Codec{}, errors.New("jwt: only HMAC algorithms are supported")
	}
	if secret == "" {
		return Codec{}, errors.New("jwt: empty secret")
	}
	return Codec{secret: []byte(secret), method: method}, nil
}

// Generate issues a signed token for subject with the given kind and ttl.
func (c Codec) Generate(subject, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(c.method, claims)
	return token.SignedString(c.secret)
}

// Parse validates signature and expiry and extracts claims from token.
func (c Codec) Parse(token string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	}, jwtlib.WithValidMethods([]string{c.method.Alg()}), jwtlib.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
