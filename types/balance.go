package types

import (
	"fmt"
	"math/big"
)

// Balance is a non-negative coin-scale integer. All money and reputation
// math in the core routes through this type instead of machine integers so
// that a long chain of multiplications (e.g. proportional redistribution
// shares) cannot silently wrap. It is backed by math/big rather than a fixed
// width integer: the spec calls for enough headroom that intermediate
// products of two coin-scale values never overflow, which a 256-bit type
// cannot always guarantee (see DESIGN.md for the uint256 tradeoff).
type Balance struct {
	v *big.Int
}

// Zero is the additive identity.
var Zero = Balance{v: big.NewInt(0)}

// NewBalance constructs a Balance from a non-negative int64.
func NewBalance(n int64) Balance {
	if n < 0 {
		panic("types: negative balance literal")
	}
	return Balance{v: big.NewInt(n)}
}

// FromBigInt copies value into a new Balance. A nil input yields zero.
func FromBigInt(value *big.Int) Balance {
	if value == nil {
		return Zero
	}
	return Balance{v: new(big.Int).Set(value)}
}

// ParseBalance parses a base-10 non-negative integer string.
func ParseBalance(s string) (Balance, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Balance{}, fmt.Errorf("types: invalid balance literal %q", s)
	}
	if v.Sign() < 0 {
		return Balance{}, fmt.Errorf("types: balance must not be negative: %s", s)
	}
	return Balance{v: v}, nil
}

func (b Balance) bigInt() *big.Int {
	if b.v == nil {
		return big.NewInt(0)
	}
	return b.v
}

// BigInt returns a defensive copy of the underlying value.
func (b Balance) BigInt() *big.Int {
	return new(big.Int).Set(b.bigInt())
}

// Sign returns -1, 0, or 1, matching math/big.Int.Sign. Balances are never
// constructed negative, but arithmetic helpers use this to guard against
// underflow before it is committed anywhere.
func (b Balance) Sign() int { return b.bigInt().Sign() }

// IsZero reports whether the balance is exactly zero.
func (b Balance) IsZero() bool { return b.Sign() == 0 }

// Cmp compares two balances the way math/big.Int.Cmp does.
func (b Balance) Cmp(other Balance) int { return b.bigInt().Cmp(other.bigInt()) }

// Add returns b+other without mutating either operand.
func (b Balance) Add(other Balance) Balance {
	return Balance{v: new(big.Int).Add(b.bigInt(), other.bigInt())}
}

// Sub returns b-other. Panics if the result would be negative: every call
// site is expected to check sufficiency first via Cmp, the same discipline
// the teacher applies before every balance debit.
func (b Balance) Sub(other Balance) Balance {
	out := new(big.Int).Sub(b.bigInt(), other.bigInt())
	if out.Sign() < 0 {
		panic("types: balance subtraction underflow")
	}
	return Balance{v: out}
}

// SafeSub returns b-other and ok=false without mutating state when the
// subtraction would underflow, for call sites that want to report a
// recoverable insufficiency error instead of panicking.
func (b Balance) SafeSub(other Balance) (Balance, bool) {
	if b.Cmp(other) < 0 {
		return Balance{}, false
	}
	return b.Sub(other), true
}

// MulPerMille computes floor(b * perMille / 1000), multiplying before
// dividing to preserve precision the way every per-mille computation in the
// spec is required to (§4.1, §9).
func (b Balance) MulPerMille(perMille uint32) Balance {
	product := new(big.Int).Mul(b.bigInt(), big.NewInt(int64(perMille)))
	product.Div(product, big.NewInt(1000))
	return Balance{v: product}
}

// MulDivFloor computes floor(b * num / den). den must be positive.
func (b Balance) MulDivFloor(num, den Balance) Balance {
	if den.Sign() <= 0 {
		return Zero
	}
	product := new(big.Int).Mul(b.bigInt(), num.bigInt())
	product.Div(product, den.bigInt())
	return Balance{v: product}
}

// String renders the decimal representation.
func (b Balance) String() string { return b.bigInt().String() }

// MarshalJSON renders the balance as a JSON string to avoid precision loss
// in consumers that parse JSON numbers as float64.
func (b Balance) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.String())), nil
}

// UnmarshalJSON parses the quoted decimal string produced by MarshalJSON.
func (b *Balance) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	parsed, err := ParseBalance(string(data))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// CeilRatio computes ceil(ratioPerMille * total / 1000) using integer
// division rounded up, per §4.1: this prevents a single dissenter below the
// ratio floor from sinking a quorum computation.
func CeilRatio(ratioPerMille uint32, total uint64) uint64 {
	if total == 0 || ratioPerMille == 0 {
		return 0
	}
	num := new(big.Int).Mul(big.NewInt(int64(ratioPerMille)), new(big.Int).SetUint64(total))
	den := big.NewInt(1000)
	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo.Uint64()
}
