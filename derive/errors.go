package derive

import "errors"

// Derivation errors. Every failure returned by RawKey and BitcoinPrivateKey
// matches exactly one of these with errors.Is.
var (
	ErrCodeTooShort      = errors.New("provided code must be at least 16 characters long")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrCodeNotBase58     = errors.New("provided code is not in Base58 format")
	ErrPasswordNotBase58 = errors.New("password is not in Base58 format")
	ErrHashingFailed     = errors.New("failed to hash with Argon2")
	ErrInvalidScalar     = errors.New("derived key is not a valid secp256k1 private key")
)

// Machine-readable error codes used by the CLI and HTTP layers
const (
	CodeCodeTooShort      = "CODE_TOO_SHORT"
	CodePasswordTooShort  = "PASSWORD_TOO_SHORT"
	CodeCodeNotBase58     = "CODE_NOT_BASE58"
	CodePasswordNotBase58 = "PASSWORD_NOT_BASE58"
	CodeHashingFailed     = "HASHING_FAILED"
	CodeInvalidScalar     = "INVALID_SCALAR"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrCodeTooShort, CodeCodeTooShort},
	{ErrPasswordTooShort, CodePasswordTooShort},
	{ErrCodeNotBase58, CodeCodeNotBase58},
	{ErrPasswordNotBase58, CodePasswordNotBase58},
	{ErrHashingFailed, CodeHashingFailed},
	{ErrInvalidScalar, CodeInvalidScalar},
}

// ErrorCode returns the machine-readable code for a derivation error,
// or an empty string if err is not one of the derivation errors.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// IsInputError reports whether err was caused by caller input rather than
// an internal hashing failure.
func IsInputError(err error) bool {
	switch ErrorCode(err) {
	case CodeCodeTooShort, CodePasswordTooShort, CodeCodeNotBase58, CodePasswordNotBase58, CodeInvalidScalar:
		return true
	}
	return false
}
