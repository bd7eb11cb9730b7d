package validation

import (
	"regexp"
	"strings"
)

// Wallet address: 0x followed by 20 bytes of hex, either case.
var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Proposal and property text: printable, no control characters.
var controlRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

func IsValidAddress(address string) bool {
	return addressRe.MatchString(address)
}

// IsValidText rejects empty (after trimming) strings, strings longer than max bytes,
// and strings containing control characters other than tab and newline.
func IsValidText(s string, max int) bool {
	t := strings.TrimSpace(s)
	return t != "" && len(s) <= max && !controlRe.MatchString(s)
}

// IsValidKeySecret enforces the API key secret shape issued by propsharectl:
// at least 24 characters, letters and digits only.
func IsValidKeySecret(secret string) bool {
	if len(secret) < 24 {
		return false
	}
	for _, r := range secret {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
