package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters match the defaults of the RustCrypto argon2 crate
	// (m=19 MiB, t=2, p=1, 32 byte output). They are part of the derived key:
	// changing any of them changes every key derived before.
	argonMemory  = 19 * 1024
	argonTime    = 2
	argonThreads = 1
	argonKeyLen  = 32

	// PHC string format limits for the salt
	minSaltLen    = 8  // bytes, Argon2 minimum
	maxSaltB64Len = 64 // characters of the encoded salt
	minKeyLen     = 4
)

// StretchParams are Argon2id cost parameters
type StretchParams struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultStretchParams are the parameters used by Stretch
var DefaultStretchParams = StretchParams{
	Memory:  argonMemory,
	Time:    argonTime,
	Threads: argonThreads,
	KeyLen:  argonKeyLen,
}

// Stretch hashes secret with Argon2id using DefaultStretchParams and returns
// the PHC string: $argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
func Stretch(secret, salt []byte) (string, error) {
	return StretchWithParams(secret, salt, DefaultStretchParams)
}

// StretchWithParams is Stretch with explicit cost parameters.
// Salt and hash are encoded as unpadded standard base64.
func StretchWithParams(secret, salt []byte, p StretchParams) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	if len(salt) < minSaltLen {
		return "", fmt.Errorf("salt too short: %d bytes, need at least %d", len(salt), minSaltLen)
	}

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	if len(saltB64) > maxSaltB64Len {
		return "", fmt.Errorf("salt too long: %d encoded characters, at most %d allowed", len(saltB64), maxSaltB64Len)
	}

	hash := argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	defer clear(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		saltB64, base64.RawStdEncoding.EncodeToString(hash)), nil
}

func (p StretchParams) validate() error {
	if p.Time < 1 {
		return errors.New("argon2 time must be at least 1")
	}
	if p.Threads < 1 {
		return errors.New("argon2 parallelism must be at least 1")
	}
	// argon2.IDKey silently raises memory below 8*threads, which would
	// make the encoded m= parameter lie
	if p.Memory < 8*uint32(p.Threads) {
		return fmt.Errorf("argon2 memory must be at least %d KiB for %d threads", 8*uint32(p.Threads), p.Threads)
	}
	if p.KeyLen < minKeyLen {
		return fmt.Errorf("argon2 output length must be at least %d bytes", minKeyLen)
	}
	return nil
}
