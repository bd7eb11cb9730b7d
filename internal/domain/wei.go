package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of base-unit digits in one display unit of currency.
const EtherDecimals = 18

var (
	ErrInvalidWei = errors.New("invalid wei amount")
	zeroInt       = new(big.Int)
)

// Wei is an immutable signed integer amount of base currency units.
// The zero value is 0. Arithmetic always returns a fresh value; the wrapped big.Int is never shared.
type Wei struct {
	v *big.Int
}

// NewWei returns n base units.
func NewWei(n int64) Wei {
	return Wei{v: big.NewInt(n)}
}

// WeiFromBig copies b.
func WeiFromBig(b *big.Int) Wei {
	if b == nil {
		return Wei{}
	}
	return Wei{v: new(big.Int).Set(b)}
}

// ParseWei parses a base-10 integer string.
func ParseWei(s string) (Wei, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Wei{}, ErrInvalidWei
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Wei{}, fmt.Errorf("%w: %q", ErrInvalidWei, s)
	}
	return Wei{v: b}, nil
}

// ParseEther parses a decimal amount of display currency ("1.5") into base units.
// Amounts with more than 18 fractional digits are rejected.
func ParseEther(s string) (Wei, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Wei{}, fmt.Errorf("%w: %q", ErrInvalidWei, s)
	}
	shifted := d.Shift(EtherDecimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Wei{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidWei, s, EtherDecimals)
	}
	return Wei{v: shifted.BigInt()}, nil
}

func (w Wei) int() *big.Int {
	if w.v == nil {
		return zeroInt
	}
	return w.v
}

// Big returns a copy of the amount.
func (w Wei) Big() *big.Int { return new(big.Int).Set(w.int()) }

func (w Wei) Add(o Wei) Wei { return Wei{v: new(big.Int).Add(w.int(), o.int())} }
func (w Wei) Sub(o Wei) Wei { return Wei{v: new(big.Int).Sub(w.int(), o.int())} }
func (w Wei) Mul(o Wei) Wei { return Wei{v: new(big.Int).Mul(w.int(), o.int())} }

// MulInt64 multiplies by an integer quantity (share counts).
func (w Wei) MulInt64(n int64) Wei { return Wei{v: new(big.Int).Mul(w.int(), big.NewInt(n))} }

// Quo divides with truncation toward zero. Panics if o is zero.
func (w Wei) Quo(o Wei) Wei { return Wei{v: new(big.Int).Quo(w.int(), o.int())} }

// QuoInt64 divides by an integer quantity with truncation toward zero.
func (w Wei) QuoInt64(n int64) Wei { return Wei{v: new(big.Int).Quo(w.int(), big.NewInt(n))} }

func (w Wei) Cmp(o Wei) int { return w.int().Cmp(o.int()) }
func (w Wei) Equal(o Wei) bool { return w.Cmp(o) == 0 }
func (w Wei) Sign() int { return w.int().Sign() }
func (w Wei) IsZero() bool { return w.Sign() == 0 }
func (w Wei) String() string { return w.int().String() }

// Ether formats the amount in display units, e.g. "1.5" for 1500000000000000000.
func (w Wei) Ether() string {
	return decimal.NewFromBigInt(w.int(), -EtherDecimals).String()
}

// MarshalJSON encodes as a quoted decimal string so no precision is lost in JavaScript clients.
func (w Wei) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON accepts a quoted integer string or a bare JSON integer.
func (w *Wei) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*w = Wei{}
		return nil
	}
	parsed, err := ParseWei(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Scan implements sql.Scanner (amounts are stored as decimal text).
func (w *Wei) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*w = Wei{}
		return nil
	case []byte:
		return w.scanString(string(v))
	case string:
		return w.scanString(v)
	case int64:
		*w = NewWei(v)
		return nil
	default:
		return fmt.Errorf("unsupported type %T for Wei", value)
	}
}

func (w *Wei) scanString(s string) error {
	parsed, err := ParseWei(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Value implements driver.Valuer.
func (w Wei) Value() (driver.Value, error) {
	return w.String(), nil
}
