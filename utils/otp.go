package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateOTP returns a numeric code of the given length from crypto/rand.
// Leading zeros are allowed, so "012345" is a valid 6-digit code.
func GenerateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
