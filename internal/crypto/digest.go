package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// RawKeyHex returns SHA3-256 of the stretched secret's text as lowercase hex (64 chars)
func RawKeyHex(stretched string) string {
	sum := sha3.Sum256([]byte(stretched))
	return hex.EncodeToString(sum[:])
}
