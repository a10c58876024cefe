// Package derive turns a code and a password into deterministic key material.
//
// Both entry points share one pipeline: the inputs are validated, stretched
// with Argon2id into a PHC hash string, and the string is handed to a
// formatter. The salt is the password itself, so identical inputs always give
// identical keys. This is what allows a key to be regenerated from memory and
// is a deliberate departure from random-salt password storage.
//
// All functions are pure and safe for concurrent use.
package derive

import (
	"fmt"

	"github.com/AlexZinkM/keyderive/internal/crypto"
)

// formatter turns the stretched secret into the final key encoding
type formatter func(stretched string) (string, error)

// RawKey derives a 64 character lowercase hex key:
// SHA3-256 of the full Argon2id hash string.
func RawKey(code, password string) (string, error) {
	return run(code, password, formatRawKey)
}

// BitcoinPrivateKey derives a compressed mainnet private key in Wallet Import Format.
// The key scalar is the first 32 bytes of the Argon2id hash string.
func BitcoinPrivateKey(code, password string) (string, error) {
	return run(code, password, formatWIF)
}

// BitcoinAddress derives the private key like BitcoinPrivateKey and also returns
// the P2PKH address of its compressed public key.
func BitcoinAddress(code, password string) (wif, address string, err error) {
	wif, err = BitcoinPrivateKey(code, password)
	if err != nil {
		return "", "", err
	}

	address, err = crypto.AddressFromWIF(wif)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidScalar, err)
	}

	return wif, address, nil
}

func run(code, password string, format formatter) (string, error) {
	if err := Validate(code, password); err != nil {
		return "", err
	}

	stretched, err := stretch(code, password)
	if err != nil {
		return "", err
	}

	return format(stretched)
}

// stretch hashes code||password with the password bytes as salt
func stretch(code, password string) (string, error) {
	stretched, err := crypto.Stretch([]byte(code+password), []byte(password))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingFailed, err)
	}
	return stretched, nil
}

func formatRawKey(stretched string) (string, error) {
	return crypto.RawKeyHex(stretched), nil
}

func formatWIF(stretched string) (string, error) {
	if len(stretched) < crypto.PrivateKeyLen {
		return "", fmt.Errorf("%w: stretched secret is %d bytes, need %d", ErrInvalidScalar, len(stretched), crypto.PrivateKeyLen)
	}

	wif, err := crypto.EncodeWIF([]byte(stretched[:crypto.PrivateKeyLen]))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidScalar, err)
	}
	return wif, nil
}
