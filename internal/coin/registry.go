package coin

import (
	"sort"
	"strings"
	"sync"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Registry indexes coin policies by symbol and coin type.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bySymbol map[string]Policy
	byType   map[uint32]string
}

// NewRegistry returns a registry holding the given policies.
func NewRegistry(policies ...Policy) (*Registry, error) {
	r := &Registry{
		bySymbol: make(map[string]Policy),
		byType:   make(map[uint32]string),
	}
	for _, p := range policies {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

//nolint:gochecknoglobals // read-only default registry
var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns a registry of the built-in policies.
// Callers must not Register into it; use NewRegistry for a mutable copy.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(Builtins()...)
		if err != nil {
			panic("coin: built-in policy is invalid: " + err.Error())
		}
		defaultReg = r
	})
	return defaultReg
}

// Register adds p, replacing any policy with the same symbol. A policy
// registered later also takes over its coin types from earlier ones.
func (r *Registry) Register(p Policy) error {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.bySymbol[p.Symbol]; ok {
		for _, ct := range []uint32{old.CoinType, old.TestCoinType} {
			if r.byType[ct] == old.Symbol {
				delete(r.byType, ct)
			}
		}
	}

	r.bySymbol[p.Symbol] = p
	r.byType[p.CoinType] = p.Symbol
	r.byType[p.TestCoinType] = p.Symbol
	return nil
}

// BySymbol looks up a policy by ticker symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Policy{}, kterr.WithDetails(kterr.ErrUnsupportedCoin, map[string]string{"symbol": symbol})
	}
	return p, nil
}

// ByCoinType looks up the policy owning a mainnet or testnet coin type.
func (r *Registry) ByCoinType(coinType uint32) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sym, ok := r.byType[coinType]
	if !ok {
		return Policy{}, false
	}
	return r.bySymbol[sym], true
}

// Policies returns all registered policies sorted by symbol.
func (r *Registry) Policies() []Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Policy, 0, len(r.bySymbol))
	for _, p := range r.bySymbol {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		bySymbol: make(map[string]Policy, len(r.bySymbol)),
		byType:   make(map[uint32]string, len(r.byType)),
	}
	for k, v := range r.bySymbol {
		c.bySymbol[k] = v
	}
	for k, v := range r.byType {
		c.byType[k] = v
	}
	return c
}
