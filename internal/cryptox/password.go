// Package cryptox holds the password, e-mail and token primitives used by
// the session and account services.
package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of plain using cost. A cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// ComparePassword reports whether plain matches hash. The comparison is
// constant-time; a malformed hash simply does not match.
func ComparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
