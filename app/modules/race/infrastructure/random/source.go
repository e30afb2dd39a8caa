// Package racerandom provides random sources for the race engine.
//
// SeededSource is deterministic for a given seed, so a race can be replayed by
// reusing the seed it reports. ScriptedSource replays a fixed list of draws.
package racerandom

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// ErrScriptExhausted is reported when a ScriptedSource runs out of draws.
var ErrScriptExhausted = errors.New("scripted draws exhausted")

// NewSeed generates a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// SeededSource draws from a math/rand generator. Safe for concurrent use.
type SeededSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// NewSeededSource creates a source for the given seed. A zero seed is replaced
// with one from crypto/rand; Seed reports the value actually used.
func NewSeededSource(seed int64) (*SeededSource, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &SeededSource{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}, nil
}

// Seed returns the seed the source was created with.
func (s *SeededSource) Seed() int64 {
	return s.seed
}

// PickInRange returns an integer in [min, max]. Reversed bounds are swapped.
func (s *SeededSource) PickInRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.rng.Intn(max-min+1)
}

// ScriptedSource returns a fixed sequence of draws in order.
type ScriptedSource struct {
	mu    sync.Mutex
	draws []int
	next  int
	err   error
}

// NewScriptedSource creates a source that replays draws.
func NewScriptedSource(draws ...int) *ScriptedSource {
	d := make([]int, len(draws))
	copy(d, draws)
	return &ScriptedSource{draws: d}
}

// PickInRange returns the next scripted draw, clamped to [min, max]. Once the
// script is exhausted it returns min and Err reports ErrScriptExhausted.
func (s *ScriptedSource) PickInRange(min, max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.draws) {
		if s.err == nil {
			s.err = fmt.Errorf("%w after %d draws", ErrScriptExhausted, len(s.draws))
		}
		return min
	}
	v := s.draws[s.next]
	s.next++

	switch {
	case v < min:
		return min
	case v > max:
		return max
	default:
		return v
	}
}

// Remaining returns how many scripted draws are left.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.draws) - s.next
}

// Err reports whether more draws were requested than scripted.
func (s *ScriptedSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
