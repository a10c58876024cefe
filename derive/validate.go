package derive

import "github.com/mr-tron/base58"

const (
	// MinCodeLen is the minimum code length in bytes
	MinCodeLen = 16
	// MinPasswordLen is the minimum password length in bytes
	MinPasswordLen = 8
)

// Validate checks code and password in a fixed order and returns the first failure:
// code length, password length, code alphabet, password alphabet.
// Only decodability as Base58 is checked, the decoded bytes are discarded.
func Validate(code, password string) error {
	if len(code) < MinCodeLen {
		return ErrCodeTooShort
	}
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if !isBase58(code) {
		return ErrCodeNotBase58
	}
	if !isBase58(password) {
		return ErrPasswordNotBase58
	}
	return nil
}

func isBase58(s string) bool {
	_, err := base58.Decode(s)
	return err == nil
}
