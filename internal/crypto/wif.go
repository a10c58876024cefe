package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PrivateKeyLen is the size of a secp256k1 private key scalar in bytes
const PrivateKeyLen = 32

var (
	ErrScalarZero     = errors.New("private key scalar is zero")
	ErrScalarOverflow = errors.New("private key scalar is not below the secp256k1 group order")
)

// ValidateScalar checks that key is a 32 byte big-endian integer in [1, n-1]
func ValidateScalar(key []byte) error {
	if len(key) != PrivateKeyLen {
		return fmt.Errorf("private key must be %d bytes, got %d", PrivateKeyLen, len(key))
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(key); overflow {
		return ErrScalarOverflow
	}
	if s.IsZero() {
		return ErrScalarZero
	}
	return nil
}

// EncodeWIF encodes a raw private key as a compressed mainnet WIF string:
// base58(0x80 || key || 0x01 || checksum)
func EncodeWIF(key []byte) (string, error) {
	if err := ValidateScalar(key); err != nil {
		return "", err
	}

	privKey, _ := btcec.PrivKeyFromBytes(key)
	wif, err := btcutil.NewWIF(privKey, &chaincfg.MainNetParams, true)
	if err != nil {
		return "", fmt.Errorf("failed to encode WIF: %w", err)
	}

	return wif.String(), nil
}

// DecodeWIF parses a WIF string and checks that it is a compressed mainnet key
func DecodeWIF(s string) (*btcutil.WIF, error) {
	wif, err := btcutil.DecodeWIF(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WIF: %w", err)
	}
	if !wif.IsForNet(&chaincfg.MainNetParams) {
		return nil, errors.New("WIF is not for bitcoin mainnet")
	}
	if !wif.CompressPubKey {
		return nil, errors.New("WIF is not for a compressed public key")
	}
	return wif, nil
}

// AddressFromWIF returns the mainnet P2PKH address of the key's compressed public key
func AddressFromWIF(s string) (string, error) {
	wif, err := DecodeWIF(s)
	if err != nil {
		return "", err
	}

	pkHash := btcutil.Hash160(wif.SerializePubKey())
	addr, err := btcutil.NewAddressPubKeyHash(pkHash, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("failed to create address: %w", err)
	}

	return addr.EncodeAddress(), nil
}
