// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const linkTokenLength = 32

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateLinkToken returns the 32-character alphanumeric token that addresses
// a payment link. Uniqueness is probabilistic; the unique index on
// payment_links.token is the backstop.
func GenerateLinkToken() (string, error) {
	return GenerateRandomString(linkTokenLength)
}
