// Package signature provides helper functions for handling the blockchain
// hashing and key identity needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// HashLength is the number of hex digits in a hash, excluding the 0x prefix.
const HashLength = 2 * sha256.Size

// =============================================================================

// Hash returns a unique string for the value. The value is marshaled to JSON
// so the field order of the value's type defines the encoding being hashed.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Digits returns the hex digits of the hash without the 0x prefix.
func Digits(hash string) string {
	if strings.HasPrefix(hash, "0x") || strings.HasPrefix(hash, "0X") {
		return hash[2:]
	}
	return hash
}

// HasZeroPrefix reports whether the first n hex digits of the hash are all
// zeros. A hash that is not a full length hash never qualifies.
func HasZeroPrefix(hash string, n uint) bool {
	const match = "0000000000000000000000000000000000000000000000000000000000000000"

	digits := Digits(hash)
	if len(digits) != HashLength || n > HashLength {
		return false
	}

	return digits[:n] == match[:n]
}

// PublicKeyToAddress converts the public key to a hex encoded address.
func PublicKeyToAddress(pk ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(pk).String()
}
