package rng

import (
	"hash/fnv"
	"math/rand"
)

// RNG derives deterministic named streams from a single decision seed.
// Each stream wraps math/rand.Rand with position tracking, so the same
// (seed, stream, call order) always yields the same sequence — the
// property replay verification depends on.
type RNG struct {
	seed    int64
	streams map[string]*Stream
}

// Stream is one named deterministic sub-sequence.
type Stream struct {
	src *rand.Rand
	pos int64
}

// New creates a deterministic RNG from a decision seed.
func New(seed int64) *RNG {
	return &RNG{seed: seed, streams: map[string]*Stream{}}
}

// Stream returns the named stream, creating it on first use. The stream
// seed is derived from the decision seed and the stream name, so streams
// never interleave: draws on one stream do not disturb another.
func (r *RNG) Stream(name string) *Stream {
	if s, ok := r.streams[name]; ok {
		return s
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	sub := int64(h.Sum64()) ^ r.seed
	s := &Stream{src: rand.New(rand.NewSource(sub))}
	r.streams[name] = s
	return s
}

// Seed returns the decision seed this RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Roll returns a random integer in [1, sides].
func (s *Stream) Roll(sides int) int {
	s.pos++
	return s.src.Intn(sides) + 1
}

// Intn returns a random integer in [0, n).
func (s *Stream) Intn(n int) int {
	s.pos++
	return s.src.Intn(n)
}

// Float64 returns a random float in [0, 1).
func (s *Stream) Float64() float64 {
	s.pos++
	return s.src.Float64()
}

// Variance returns a multiplier in [1-spread, 1+spread].
func (s *Stream) Variance(spread float64) float64 {
	s.pos++
	return 1 + (s.src.Float64()*2-1)*spread
}

// Position returns the number of draws made on this stream.
func (s *Stream) Position() int64 {
	return s.pos
}
