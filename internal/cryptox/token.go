package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/fintracker/internal/common"
)

const resetTokenBytes = 32

// NewResetToken returns a random password-reset token and its SHA-256 hash.
// Only the hash is stored; the raw value goes out by e-mail.
func NewResetToken() (raw, hash string, err error) {
	raw, err = common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return "", "", err
	}
	return raw, HashToken(raw), nil
}

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
