// Package strategy defines the decision capability plugged into backtest
// runs along with the registry sweeps construct fresh instances from
package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	mu       sync.RWMutex
	registry = map[string]func() Handler{}
)

// Register stores a constructor under a unique name. Built in strategies
// register themselves at package init
func Register(name string, constructor func() Handler) error {
	if constructor == nil {
		return fmt.Errorf("%w for %v", ErrNilConstructor, name)
	}
	mu.Lock()
	defer mu.Unlock()
	name = strings.ToLower(name)
	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, name)
	}
	registry[name] = constructor
	return nil
}

// New constructs a fresh instance of a registered strategy with its
// defaults applied. Every run receives its own instance, nothing is shared
// between sweep cells
func New(name string) (Handler, error) {
	mu.RLock()
	constructor, ok := registry[strings.ToLower(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrStrategyNotFound, name)
	}
	h := constructor()
	h.SetDefaults()
	return h, nil
}

// List returns the registered strategy names sorted alphabetically
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value returns a parameter and whether it was set
func (p Params) Value(key string) (float64, bool) {
	v, ok := p[key]
	return v, ok
}

// ValueOr returns a parameter, falling back when unset
func (p Params) ValueOr(key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

// IntValue returns a parameter truncated to an int and whether it was set
func (p Params) IntValue(key string) (int, bool) {
	v, ok := p[key]
	return int(v), ok
}

// IntValueOr returns a parameter truncated to an int, falling back when
// unset
func (p Params) IntValueOr(key string, fallback int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return fallback
}

// DecimalValue returns a parameter as a decimal and whether it was set
func (p Params) DecimalValue(key string) (decimal.Decimal, bool) {
	v, ok := p[key]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}

// DecimalValueOr returns a parameter as a decimal, falling back when unset
func (p Params) DecimalValueOr(key string, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := p[key]; ok {
		return decimal.NewFromFloat(v)
	}
	return fallback
}

// Clone copies the parameter set so sweep cells never share storage
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

// Label renders the parameter set as sorted key=value pairs, the same
// input always renders the same label
func (p Params) Label() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i := range keys {
		pairs[i] = keys[i] + "=" + strconv.FormatFloat(p[keys[i]], 'g', -1, 64)
	}
	return strings.Join(pairs, " ")
}

// Combinations expands the grid into every parameter set it describes. The
// enumeration order is fixed: keys are walked alphabetically with the last
// key cycling fastest, so repeat sweeps hand out identical sets in an
// identical order
func (g Grid) Combinations() []Params {
	keys := make([]string, 0, len(g))
	total := 1
	for k := range g {
		if len(g[k]) == 0 {
			return nil
		}
		keys = append(keys, k)
		total *= len(g[k])
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	combinations := make([]Params, 0, total)
	indexes := make([]int, len(keys))
	for {
		params := make(Params, len(keys))
		for i := range keys {
			params[keys[i]] = g[keys[i]][indexes[i]]
		}
		combinations = append(combinations, params)

		i := len(indexes) - 1
		for ; i >= 0; i-- {
			indexes[i]++
			if indexes[i] < len(g[keys[i]]) {
				break
			}
			indexes[i] = 0
		}
		if i < 0 {
			return combinations
		}
	}
}
