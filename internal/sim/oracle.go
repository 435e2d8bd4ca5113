// Package sim defines the boundary to the black-box simulation the
// optimizer tunes against. An oracle is a pure function of its weight
// vector and seed: the same inputs always produce the same outcome.
package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrOracleExists   = errors.New("oracle already registered")
	ErrOracleNotFound = errors.New("oracle not found")
)

// Oracle runs one deterministic trial of one weight vector. Outcome is a
// scalar where lower is better. Implementations must be safe for
// concurrent use: evaluation fans trials out across a worker pool.
type Oracle interface {
	Name() string
	GeneCount() int
	Simulate(genes []float64, seed int64) (float64, error)
}

var oracleRegistry = struct {
	mu sync.RWMutex
	m  map[string]Oracle
}{
	m: make(map[string]Oracle),
}

// Register adds an oracle under its name.
func Register(oracle Oracle) error {
	if oracle == nil {
		return errors.New("oracle is required")
	}
	name := oracle.Name()
	if name == "" {
		return errors.New("oracle name is required")
	}

	oracleRegistry.mu.Lock()
	defer oracleRegistry.mu.Unlock()

	if _, exists := oracleRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrOracleExists, name)
	}
	oracleRegistry.m[name] = oracle
	return nil
}

// Resolve looks up a registered oracle by name.
func Resolve(name string) (Oracle, error) {
	oracleRegistry.mu.RLock()
	defer oracleRegistry.mu.RUnlock()

	oracle, ok := oracleRegistry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOracleNotFound, name)
	}
	return oracle, nil
}

// Names lists registered oracles in sorted order.
func Names() []string {
	oracleRegistry.mu.RLock()
	defer oracleRegistry.mu.RUnlock()

	names := make([]string, 0, len(oracleRegistry.m))
	for name := range oracleRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
