// Package currency implements normalization of local-currency amounts into
// the configured base currency: an immutable-snapshot rate store plus a
// converter applying the freshness and fallback policy. Pure computation; the
// caller supplies the clock and the provider data.
package currency

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is one cached exchange rate. ToBase is the multiplicative factor to
// the base currency: amount_base = amount_local * ToBase.
type Rate struct {
	Currency  string
	ToBase    decimal.Decimal
	FetchedAt time.Time
}

// snapshot is an immutable currency→Rate map. A refresh builds a new one and
// swaps the pointer; readers in flight keep the snapshot they acquired, so
// there are no torn reads.
type snapshot struct {
	rates map[string]Rate
}

// Store holds the current snapshot behind an atomic pointer. Lookups are
// lock-free and never block each other; Merge is the single-writer path.
type Store struct {
	mu      sync.Mutex // serializes writers only
	current atomic.Pointer[snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&snapshot{rates: map[string]Rate{}})
	return s
}

// Lookup returns the cached rate for a currency (case-insensitive).
func (s *Store) Lookup(currency string) (Rate, bool) {
	snap := s.current.Load()
	r, ok := snap.rates[strings.ToUpper(strings.TrimSpace(currency))]
	return r, ok
}

// Merge applies the given rates on top of the current snapshot and swaps the
// result in atomically. Currencies absent from rates keep their last known
// value and age toward the fallback boundary; a failed refresh simply never
// calls Merge, so the cache is never cleared on provider errors.
func (s *Store) Merge(rates []Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := make(map[string]Rate, len(cur.rates)+len(rates))
	for c, r := range cur.rates {
		next[c] = r
	}
	for _, r := range rates {
		code := strings.ToUpper(strings.TrimSpace(r.Currency))
		if code == "" {
			continue
		}
		r.Currency = code
		next[code] = r
	}
	s.current.Store(&snapshot{rates: next})
}

// Snapshot returns the current rates sorted by currency code. The slice is a
// copy; later merges do not modify it.
func (s *Store) Snapshot() []Rate {
	snap := s.current.Load()
	out := make([]Rate, 0, len(snap.rates))
	for _, r := range snap.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Len returns the number of currencies in the current snapshot.
func (s *Store) Len() int {
	return len(s.current.Load().rates)
}
