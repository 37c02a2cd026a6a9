package registry

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatUID renders an identifier as space-separated upper-case hex bytes.
func FormatUID(uid []byte) string {
	return fmt.Sprintf("% X", uid)
}

// ParseUID parses a hex identifier. Bytes may be separated by spaces, colons
// or dashes ("04:A1:B2:C3", "04 a1 b2 c3", "04a1b2c3").
func ParseUID(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "-", "").Replace(strings.TrimSpace(s))
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if clean == "" {
		return nil, ErrEmptyIdentifier
	}
	uid, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse uid %q: %w", s, err)
	}
	if len(uid) > MaxUIDLen {
		return nil, fmt.Errorf("parse uid %q: %w", s, ErrIdentifierTooLong)
	}
	return uid, nil
}
