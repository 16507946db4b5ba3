package utilities

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DecodeHexFixed decodes an optionally 0x-prefixed hex string into exactly size bytes.
func DecodeHexFixed(s string, size int) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(raw))
	}
	return raw, nil
}
