package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateSMSCode returns a 6-digit verification code, zero-padded, drawn
// uniformly from [0, 999999].
func GenerateSMSCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
