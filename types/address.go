package types

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix identifies the human-readable namespace encoded into an
// Address's bech32 representation.
type AddressPrefix string

const (
	// DAOPrefix marks addresses belonging to the governance core itself
	// (members, externals, the governance wallet).
	DAOPrefix AddressPrefix = "dao"
)

// Address is an abstract 20-byte principal identifier. It carries no key
// material or signature scheme of its own; the host supplies authenticated
// callers, and the core only ever compares and stores raw bytes.
type Address struct {
	prefix AddressPrefix
	bytes  [20]byte
}

// NewAddress constructs an Address from exactly 20 bytes.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("types: address must be 20 bytes long, got %d", len(b))
	}
	var out Address
	out.prefix = prefix
	copy(out.bytes[:], b)
	return out, nil
}

// MustNewAddress constructs an Address and panics on invalid input. Reserved
// for call sites operating on constants known to be valid at compile time.
func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// Bytes returns a defensive copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, 20)
	copy(out, a.bytes[:])
	return out
}

// IsZero reports whether the address is the unset zero value.
func (a Address) IsZero() bool {
	return a.bytes == [20]byte{}
}

// Prefix returns the address's human-readable namespace.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

// String renders the address as bech32, matching the textual form used
// throughout event attributes and audit records.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// DecodeAddress parses the bech32 textual form produced by String.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("types: invalid bech32 address: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("types: error converting address bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// MarshalJSON renders the address as its bech32 string form, matching
// Balance's quoted-string encoding so RPC responses and audit records never
// leak the struct's unexported fields as an empty object.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

// UnmarshalJSON parses the quoted bech32 string produced by MarshalJSON.
func (a *Address) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := DecodeAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
