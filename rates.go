// Package rates holds the domain types for the currency rate registry:
// currencies identified by code, their rates relative to a shared base unit,
// and conversion between them.
package rates

import "fmt"

// Code a currency code, e.g. "USD" or "BTC"
type Code string

// Rate a currency's value relative to the shared base unit
type Rate float64

// Amount a monetary amount... which should be a float...
type Amount float64

// Kind tags a currency as fiat or crypto
type Kind string

const (
	// Fiat represents physical currency
	Fiat Kind = "FIAT"

	// Crypto represents crypto currency
	Crypto Kind = "CRYPTO"
)

// Currency is a currency known to the registry. Code and kind are fixed at
// construction; the rate changes only through SetRate.
type Currency struct {
	code Code
	rate Rate
	kind Kind
}

// New constructs a valid Currency. The rate must be positive because
// conversions divide by it.
func New(code Code, rate Rate, kind Kind) (*Currency, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if rate <= 0 {
		return nil, fmt.Errorf("new currency [%v]: %w", code, ErrInvalidRate)
	}
	return &Currency{code: code, rate: rate, kind: kind}, nil
}

// Code returns the currency code.
func (c *Currency) Code() Code { return c.code }

// Rate returns the current rate to the base unit.
func (c *Currency) Rate() Rate { return c.rate }

// Kind returns the currency kind.
func (c *Currency) Kind() Kind { return c.kind }

// SetRate replaces the stored rate. Any holder of the currency may call
// this directly; doing so bypasses change notification, which happens only
// through the registry's update path.
func (c *Currency) SetRate(rate Rate) error {
	if rate <= 0 {
		return fmt.Errorf("set rate [%v]: %w", c.code, ErrInvalidRate)
	}
	c.rate = rate
	return nil
}

// ConvertTo converts amount from c's denomination to target's via the ratio
// of their rates to the base unit. Any two currencies sharing the base unit
// convert directly; a zero amount converts to zero.
func (c *Currency) ConvertTo(target *Currency, amount Amount) Amount {
	return Amount(float64(amount) * float64(target.rate) / float64(c.rate))
}

// Derive builds a new fiat currency whose rate is base's rate scaled by
// multiplier. The result is not registered anywhere; the caller decides
// where it lives.
func Derive(code Code, base *Currency, multiplier float64) (*Currency, error) {
	return New(code, Rate(float64(base.rate)*multiplier), Fiat)
}

// RateChange is the event broadcast when a registered currency's rate
// changes.
type RateChange struct {
	Code Code
	Rate Rate
}
