package azecrypto

import (
	"crypto/rand"
	"fmt"
)

// RandomScalar draws a fresh masking factor.
func RandomScalar() (Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return Scalar{}, fmt.Errorf("random scalar: %w", err)
	}
	s, err := ScalarFromUniformBytes(buf[:])
	if err != nil {
		return Scalar{}, err
	}
	if s.IsZero() {
		return Scalar{}, fmt.Errorf("random scalar: drew zero")
	}
	return s, nil
}
