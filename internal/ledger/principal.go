package ledger

import (
	"fmt"
	"strings"

	"propshare-backend/internal/pkg/validation"
)

// Capability is a platform-level permission granted by the external identity policy.
type Capability string

const (
	AdminCapability    Capability = "admin"
	VerifierCapability Capability = "verifier"
)

// ParseCapability accepts the lower-case capability names.
func ParseCapability(s string) (Capability, error) {
	switch c := Capability(strings.ToLower(strings.TrimSpace(s))); c {
	case AdminCapability, VerifierCapability:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown capability %q", ErrInvalidArgument, s)
	}
}

// Principal is a caller resolved by the identity layer. Manager and shareholder roles are not
// capabilities: they follow from Address and the ledger's own state.
type Principal struct {
	Address      string
	Capabilities []Capability
}

// Has reports whether the principal was granted c.
func (p Principal) Has(c Capability) bool {
	for _, got := range p.Capabilities {
		if got == c {
			return true
		}
	}
	return false
}

// NormalizeAddress validates a 0x-prefixed 20-byte hex address and lower-cases it.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !validation.IsValidAddress(s) {
		return "", fmt.Errorf("%w: malformed address %q", ErrInvalidArgument, s)
	}
	// the result is kept as a map key; never alias the caller's buffer
	return strings.Clone(strings.ToLower(s)), nil
}
