package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// Session tokens are stateless. Each one carries the user ID and its
// own expiry, so verification never touches the database. The flip
// side is that revocation before expiry isn't possible.
var (
	ErrTokenMalformed = errors.New("authorization token malformed")
	ErrTokenSignature = errors.New("authorization token signature invalid")
	ErrTokenExpired   = errors.New("authorization token expired")
)

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenIssuer(secret []byte, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		lifetime: lifetime,
	}
}

// NewTokenIssuerFromConfig builds an issuer from the security.* config keys
func NewTokenIssuerFromConfig() *TokenIssuer {
	return NewTokenIssuer(
		[]byte(viper.GetString("security.jwt_secret")),
		time.Duration(viper.GetInt("security.jwt_lifetime_hours"))*time.Hour,
	)
}

// Issue signs a new session token for the given user ID
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()

	claims := &sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}

// Verify checks signature, expiry and shape of a session token and
// returns the user ID it was issued for. The returned errors are for
// logs only, callers must collapse them into one unauthenticated answer
func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}

		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}

	return claims.UserID, nil
}
