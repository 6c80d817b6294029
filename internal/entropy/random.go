// Package entropy provides the seeded random streams that drive every
// stochastic outcome in a game: economic noise, vote perturbation, poll swings.
// Streams count their draws so a saved game can be resumed mid-sequence.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// State is the serializable position of a Source: its seed and how many
// values have been drawn from the underlying generator.
type State struct {
	Seed  int64  `json:"seed"`
	Draws uint64 `json:"draws"`
}

// countingSource wraps a rand.Source64 and counts every step of the generator.
type countingSource struct {
	src   mrand.Source64
	draws uint64
}

func (c *countingSource) Int63() int64 {
	c.draws++
	return c.src.Int63()
}

func (c *countingSource) Uint64() uint64 {
	c.draws++
	return c.src.Uint64()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.draws = 0
}

// Source is a reproducible random stream. Not safe for concurrent use; each
// subsystem owns its own stream.
type Source struct {
	seed int64
	cs   *countingSource
	rng  *mrand.Rand
}

// New creates a stream seeded with seed.
func New(seed int64) *Source {
	cs := &countingSource{src: mrand.NewSource(seed).(mrand.Source64)}
	return &Source{
		seed: seed,
		cs:   cs,
		rng:  mrand.New(cs),
	}
}

// Restore rebuilds a stream at the position recorded in st.
func Restore(st State) *Source {
	s := New(st.Seed)
	for i := uint64(0); i < st.Draws; i++ {
		s.cs.Uint64()
	}
	return s
}

// Derive returns an independent sub-stream seeded at seed+offset.
func (s *Source) Derive(offset int64) *Source {
	return New(s.seed + offset)
}

// State reports the stream position for snapshots.
func (s *Source) State() State {
	return State{Seed: s.seed, Draws: s.cs.draws}
}

// Seed returns the seed the stream was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a value in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Range returns a value in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Normal returns a normally distributed value with mean 0 and the given
// standard deviation.
func (s *Source) Normal(stddev float64) float64 {
	return s.rng.NormFloat64() * stddev
}

// Intn returns a value in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Read fills p from the stream, so identifiers drawn through it replay with the
// game. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := s.rng.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// CryptoSeed draws a game seed from crypto/rand, used when the player does
// not pin one. Falls back to a fixed seed if the OS source fails.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & math.MaxInt64)
}
