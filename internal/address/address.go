// Package address derives the deterministic ledger addresses at which game
// records live. Derivation is the program-derived-address scheme: seeds are
// hashed together with a bump byte and the owning program id until the digest
// falls off the ed25519 curve, so no private key can exist for the result.
package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"go.dedis.ch/kyber/v4/suites"
)

// Size is the byte length of an Address.
const Size = 32

const (
	// MaxSeeds is the most seeds a single derivation may use (bump included).
	MaxSeeds = 16
	// MaxSeedLen is the longest permitted single seed.
	MaxSeedLen = 32

	pdaMarker = "ProgramDerivedAddress"
)

// Address is an opaque 32-byte ledger identifier.
type Address [Size]byte

// Zero is the all-zero address, used on the ledger for "nobody".
var Zero Address

var (
	// ErrInvalidAddress is returned when text does not decode to 32 bytes.
	ErrInvalidAddress = errors.New("address: invalid address")
	// ErrMaxSeedLength is returned when a seed exceeds MaxSeedLen or too many seeds are given.
	ErrMaxSeedLength = errors.New("address: seed too long or too many seeds")
	// ErrOnCurve is returned by CreateProgramAddress when the digest is a valid public key.
	ErrOnCurve = errors.New("address: derived address is on the ed25519 curve")
	// ErrNoViableBump is returned when all 256 bumps land on the curve.
	ErrNoViableBump = errors.New("address: unable to find a viable bump")
)

var suite = suites.MustFind("Ed25519")

// Parse decodes a base58 address.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("%w %q: %v", ErrInvalidAddress, s, err)
	}
	if len(raw) != Size {
		return Zero, fmt.Errorf("%w %q: decoded to %d bytes", ErrInvalidAddress, s, len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustParse parses a base58 address and panics on error.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the base58 form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OnCurve reports whether b decodes as a compressed ed25519 point.
func OnCurve(b [Size]byte) bool {
	return suite.Point().UnmarshalBinary(b[:]) == nil
}

// CreateProgramAddress hashes seeds with the program id. It fails with
// ErrOnCurve when the result would be a valid public key.
func CreateProgramAddress(program Address, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}
	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(seed))
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var out Address
	h.Sum(out[:0])
	if OnCurve(out) {
		return Zero, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bumps from 255 downwards and returns the first
// off-curve address together with its bump.
func FindProgramAddress(program Address, seeds ...[]byte) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Zero, 0, fmt.Errorf("%w: %d seeds leaves no room for the bump", ErrMaxSeedLength, len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump

	for b := 255; b >= 0; b-- {
		bump[0] = byte(b)
		addr, err := CreateProgramAddress(program, withBump...)
		switch {
		case err == nil:
			return addr, byte(b), nil
		case errors.Is(err, ErrOnCurve):
			continue
		default:
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}
