package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiryMargin treats tokens about to expire as expired, to absorb
// clock skew and request latency.
const DefaultExpiryMargin = 30 * time.Second

var parser = jwt.NewParser()

// TokenExpiry returns the exp claim of a JWT. The signature is not
// verified; that is the engine's job. A token without exp yields the zero time.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// IsExpired reports whether token expires within margin. Tokens that cannot
// be parsed are opaque to us and are never treated as expired.
func IsExpired(token string, margin time.Duration) bool {
	exp, err := TokenExpiry(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return !time.Now().Add(margin).Before(exp)
}

// TokenSubject returns the user name carried by the token, or "".
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, claim := range []string{"name", "unique_name", "preferred_username"} {
		if v, ok := claims[claim].(string); ok && v != "" {
			return v
		}
	}
	sub, _ := claims.GetSubject()
	return sub
}
