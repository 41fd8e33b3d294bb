package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/fintracker/internal/common"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// EmailCodec encrypts e-mail addresses at rest (AES-256-GCM) and derives the
// keyed lookup hash used for uniqueness checks.
//
// Ciphertexts are hex(nonce || tag || ciphertext).
type EmailCodec struct {
	aead    cipher.AEAD
	hmacKey []byte
}

// NewEmailCodec builds a codec from a 64-char hex AES-256 key and an HMAC key.
func NewEmailCodec(encryptionKeyHex, hmacKey string) (*EmailCodec, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	if hmacKey == "" {
		return nil, fmt.Errorf("hmac key is empty")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &EmailCodec{aead: aead, hmacKey: []byte(hmacKey)}, nil
}

func (c *EmailCodec) Encrypt(plain string) (string, error) {
	nonce := common.GenerateRandByteArray(nonceSize)

	// Seal appends the tag after the ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(plain), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, nonceSize+tagSize+len(ct))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, ct...)
	return hex.EncodeToString(out), nil
}

// Decrypt fails with common.ErrDecryption when the blob is malformed or the
// authentication tag does not verify.
func (c *EmailCodec) Decrypt(blob string) (string, error) {
	raw, err := hex.DecodeString(blob)
	if err != nil || len(raw) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: malformed ciphertext", common.ErrDecryption)
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ct := raw[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return string(plain), nil
}

// Hash returns the hex HMAC-SHA256 of the trimmed, lower-cased address.
func (c *EmailCodec) Hash(email string) string {
	mac := hmac.New(sha256.New, c.hmacKey)
	mac.Write([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(mac.Sum(nil))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail keeps the first character of the local part: "alice@x.io"
// becomes "a***@x.io", "a@x.io" becomes "*@x.io".
func MaskEmail(email string) string {
	local, domain, _ := strings.Cut(email, "@")
	if utf8.RuneCountInString(local) <= 1 {
		return "*@" + domain
	}
	_, size := utf8.DecodeRuneInString(local)
	return local[:size] + "***@" + domain
}
