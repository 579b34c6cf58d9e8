package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/crypto/ripemd160"

	"github.com/screa/brainwallet-scanner/pkg/types"
)

const (
	// PrivateKeyLen is the size of a secp256k1 scalar in bytes
	PrivateKeyLen = 32
)

// InvalidCandidateError is returned when a candidate hashes to a scalar that
// is not a valid private key (zero or >= the curve order)
type InvalidCandidateError struct {
	Candidate string
	Key       string
}

func (e *InvalidCandidateError) Error() string {
	return fmt.Sprintf("candidate %q yields invalid private key %s", e.Candidate, e.Key)
}

// BrainwalletKey returns SHA-256 of the candidate's UTF-8 bytes
func BrainwalletKey(candidate string) [PrivateKeyLen]byte {
	return sha256.Sum256([]byte(candidate))
}

// Derive computes the brainwallet key and both P2PKH addresses for a candidate.
// Safe for concurrent use.
func Derive(candidate string) (types.DerivedAddressPair, error) {
	return DeriveFromKey(candidate, BrainwalletKey(candidate))
}

// DeriveFromKey derives both addresses from a raw 32-byte private key
func DeriveFromKey(candidate string, key [PrivateKeyLen]byte) (types.DerivedAddressPair, error) {
	keyHex := hex.EncodeToString(key[:])

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(key[:]); overflow || scalar.IsZero() {
		return types.DerivedAddressPair{}, &InvalidCandidateError{Candidate: candidate, Key: keyHex}
	}

	_, pubKey := btcec.PrivKeyFromBytes(key[:])

	compressed, err := P2PKHAddress(pubKey.SerializeCompressed())
	if err != nil {
		return types.DerivedAddressPair{}, err
	}
	uncompressed, err := P2PKHAddress(pubKey.SerializeUncompressed())
	if err != nil {
		return types.DerivedAddressPair{}, err
	}

	return types.DerivedAddressPair{
		Candidate:           candidate,
		PrivateKeyHex:       keyHex,
		AddressCompressed:   compressed,
		AddressUncompressed: uncompressed,
	}, nil
}

// Hash160 calculates RIPEMD160(SHA256(b))
func Hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	_, _ = h.Write(sum[:])
	return h.Sum(nil)
}

// P2PKHAddress encodes a serialized public key as a mainnet Base58Check address
func P2PKHAddress(serializedPubKey []byte) (string, error) {
	addr, err := btcutil.NewAddressPubKeyHash(Hash160(serializedPubKey), &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	return addr.EncodeAddress(), nil
}
