package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/user-service/internal/application/auth"
	"github.com/baechuer/user-service/internal/domain"
)

// JWTService issues and verifies HS256 tokens for sessions and password resets.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time

	// distinguishExpired reports elapsed tokens as token_expired instead of
	// folding them into token_invalid.
	distinguishExpired bool
}

type JWTOption func(*JWTService)

func WithDistinguishExpired(on bool) JWTOption {
	return func(s *JWTService) { s.distinguishExpired = on }
}

// WithJWTClock overrides the clock used for iat/exp on issuance and for
// expiry checks on verification.
func WithJWTClock(now func() time.Time) JWTOption {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewJWTService(secret, issuer string, opts ...JWTOption) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	s := &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

type tokenClaims struct {
	UserID  string `json:"uid,omitempty"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *JWTService) Issue(c auth.TokenClaims, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:  c.UserID,
		Email:   c.Email,
		Purpose: string(c.Purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.ID,
			Issuer:    s.issuer,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, structure and expiry.
func (s *JWTService) Verify(token string) (auth.TokenClaims, error) {
	if token == "" {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if s.distinguishExpired && errors.Is(err, jwt.ErrTokenExpired) {
			return auth.TokenClaims{}, domain.ErrTokenExpired()
		}
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	purpose := auth.TokenPurpose(claims.Purpose)
	if purpose != auth.PurposeSession && purpose != auth.PurposePasswordReset {
		return auth.TokenClaims{}, domain.ErrTokenInvalid()
	}

	return auth.TokenClaims{
		ID:      claims.ID,
		UserID:  claims.UserID,
		Email:   claims.Email,
		Purpose: purpose,
		Exp:     claims.ExpiresAt.Time,
	}, nil
}

// Fingerprint is the hex SHA-256 of the raw token. Only fingerprints are persisted.
func (s *JWTService) Fingerprint(token string) string {
	return Fingerprint(token)
}

func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// FingerprintEqual compares two fingerprints in constant time.
func FingerprintEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
