// Package selection implements the Fixed/Random/Sequential selection
// primitive shared by matting, photo-effect, and transition configuration
// (spec §4.8). A single policy value is reused across call sites that share
// a config instance, so the Sequential cursor is held by reference and
// persists for the process lifetime.
package selection

import (
	"fmt"
	"math/rand"

	"github.com/dixieflatline76/photoframe/util/safe"
)

// Policy names the selection rule.
type Policy int

const (
	Fixed Policy = iota
	Random
	Sequential
)

// ParsePolicy parses the kebab-case config spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fixed":
		return Fixed, nil
	case "random":
		return Random, nil
	case "sequential":
		return Sequential, nil
	default:
		return Fixed, fmt.Errorf("selection: unknown policy %q", s)
	}
}

// Entry is one canonical, indexable item in a selection list. Kind is left
// as an opaque payload (e.g. a matting variant, an effect, or a transition)
// so the same Selector type serves every call site in §4.8.
type Entry struct {
	Index int
	Kind  any
}

// Selector picks among a fixed list of Entry values according to Policy.
// It is safe for concurrent use: Sequential's cursor is an atomic counter,
// matching the teacher's util.SafeCounter pattern for shared mutable state
// that must survive independent of any single goroutine's stack.
type Selector struct {
	policy  Policy
	entries []Entry
	cursor  *safe.SafeCounter
	rng     *rand.Rand
}

// NewSelector builds a Selector over entries. If policy is unset (empty
// string resolves to Fixed via ParsePolicy) the §4.8 defaulting rule
// applies: a single entry defaults to Fixed, more than one defaults to
// Random. Fixed with len(entries) != 1 is a configuration error.
func NewSelector(policy Policy, explicit bool, entries []Entry, rng *rand.Rand) (*Selector, error) {
	if !explicit {
		if len(entries) == 1 {
			policy = Fixed
		} else {
			policy = Random
		}
	}
	if policy == Fixed && len(entries) != 1 {
		return nil, fmt.Errorf("selection: fixed policy requires exactly one entry, got %d", len(entries))
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("selection: no entries configured")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Selector{
		policy:  policy,
		entries: entries,
		cursor:  safe.NewSafeInt(),
		rng:     rng,
	}, nil
}

// Next returns the next Entry per the configured policy. It is the single
// call site used by matting, photo-effect, and transition selection.
func (s *Selector) Next() Entry {
	switch s.policy {
	case Fixed:
		return s.entries[0]
	case Sequential:
		c := s.cursor.Increment() - 1
		return s.entries[c%len(s.entries)]
	case Random:
		fallthrough
	default:
		return s.entries[s.rng.Intn(len(s.entries))]
	}
}

// Len reports how many canonical entries this selector holds.
func (s *Selector) Len() int { return len(s.entries) }

// Policy reports the resolved policy (after §4.8 defaulting).
func (s *Selector) Policy() Policy { return s.policy }
