package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const pseudonymLength = 16

// Pseudonym returns a stable, non-reversible token for an identifier so it can
// leave the process in events without exposing the raw value.
func Pseudonym(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])[:pseudonymLength]
}
