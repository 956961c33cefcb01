package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// referenceAlphabet excludes visually confusable characters (O/0, I/1) so a
// customer can type the code into a bank transfer without ambiguity.
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxReferenceLen caps normalized references; bank statement fields are short.
const maxReferenceLen = 20

// NewTopUpReference generates a short human-typeable code like "CT-A9F2-7K3D".
// Uniqueness is NOT guaranteed here; callers must existence-check against the
// ledger and regenerate on collision.
func NewTopUpReference() (string, error) {
	pick := func(n int) (string, error) {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
			if err != nil {
				return "", fmt.Errorf("failed to read random bytes: %w", err)
			}
			sb.WriteByte(referenceAlphabet[idx.Int64()])
		}
		return sb.String(), nil
	}

	a, err := pick(4)
	if err != nil {
		return "", err
	}
	b, err := pick(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CT-%s-%s", a, b), nil
}

// NormalizeReference uppercases, strips all whitespace and caps the length.
// This is the form stored for uniqueness checks and manual bank reconciliation,
// so "ct-a9f2-7k3d" and " CT-A9F2-7K3D " normalize to the same string.
// Hyphens are kept as typed.
func NormalizeReference(ref string) string {
	norm := strings.ToUpper(strings.Join(strings.Fields(ref), ""))
	if len(norm) > maxReferenceLen {
		norm = norm[:maxReferenceLen]
	}
	return norm
}
