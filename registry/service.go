// Package registry owns the set of known currencies by code. It applies
// rate updates, broadcasts the resulting change events and converts amounts
// between registered currencies.
package registry

import (
	"context"
	"fmt"
	"sync"

	rates "go-currency-rate-registry"
	"go-currency-rate-registry/notify"
)

// Service is the currency rate registry: register currencies, look them up,
// apply rate updates and convert between them. Every successful rate update
// is broadcast to subscribers before the call returns.
type Service interface {
	Add(c *rates.Currency)
	Currency(code rates.Code) (*rates.Currency, error)
	UpdateRate(ctx context.Context, code rates.Code, rate rates.Rate) error
	Convert(ctx context.Context, amount rates.Amount, from, to rates.Code) (rates.Amount, error)
}

// service is the in-memory registry. The map holds non-owning references:
// currencies remain valid for whoever registered them.
type service struct {
	// lock synchronizes access to currencies to make it concurrency safe
	lock sync.RWMutex

	// currencies maps a currency code to the registered currency
	currencies map[rates.Code]*rates.Currency

	// broadcaster fans rate changes out to subscribers
	broadcaster *notify.Broadcaster
}

// NewService constructs a registry broadcasting rate changes through b.
func NewService(b *notify.Broadcaster) Service {
	return &service{
		currencies:  map[rates.Code]*rates.Currency{},
		broadcaster: b,
	}
}

// Add stores c keyed by its code. A later Add for the same code replaces
// the earlier mapping.
func (s *service) Add(c *rates.Currency) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.currencies[c.Code()] = c
}

// Currency returns the registered currency for code.
func (s *service) Currency(code rates.Code) (*rates.Currency, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.currencies[code]
	if !ok {
		return nil, fmt.Errorf("lookup [%v]: %w", code, rates.ErrNotFound)
	}
	return c, nil
}

// UpdateRate sets the rate for code and broadcasts the change. Unknown
// codes and non-positive rates fail before any notification is sent.
func (s *service) UpdateRate(ctx context.Context, code rates.Code, rate rates.Rate) error {
	s.lock.Lock()
	c, ok := s.currencies[code]
	if !ok {
		s.lock.Unlock()
		return fmt.Errorf("update rate [%v]: %w", code, rates.ErrNotFound)
	}
	if err := c.SetRate(rate); err != nil {
		s.lock.Unlock()
		return fmt.Errorf("update rate [%v]: %w", code, err)
	}
	s.lock.Unlock()

	// Broadcast outside the lock, handlers may call back into the registry.
	s.broadcaster.Broadcast(rates.RateChange{Code: code, Rate: rate})
	return nil
}

// Convert converts amount from one registered currency to another with
// their current rates. The rate reads happen under the registry lock, so a
// concurrent UpdateRate cannot race them.
func (s *service) Convert(ctx context.Context, amount rates.Amount, from, to rates.Code) (rates.Amount, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	fromCurrency, ok := s.currencies[from]
	if !ok {
		return 0, fmt.Errorf("convert from [%v]: %w", from, rates.ErrNotFound)
	}
	toCurrency, ok := s.currencies[to]
	if !ok {
		return 0, fmt.Errorf("convert to [%v]: %w", to, rates.ErrNotFound)
	}
	return fromCurrency.ConvertTo(toCurrency, amount), nil
}
