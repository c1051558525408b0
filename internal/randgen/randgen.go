// Copyright 2024 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package randgen draws the uniformly-distributed offsets and fill bytes the
// workload engine needs: which device to target, which aligned offset within
// it, and what to write into a large block before a dirtying write. The
// original tool composed two 16-bit PRNG draws into a 48-bit value; here a
// single 64-bit source is masked/modded instead, which is uniform over the
// requested range without needing the same bit layout.
package randgen

import (
	"math/rand"
	"sync"
)

// Source draws pseudo-random values for offset selection and buffer fill.
// Safe for concurrent use: every caller (producer, large-block loops) shares
// one seeded Source, so all of a run's draws come from a single seed. The
// order in which concurrent callers draw is not fixed, so which caller gets
// which value can differ between runs with the same seed.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform random integer in [0, n).
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Int63n returns a uniform random int64 in [0, n).
func (s *Source) Int63n(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

// Fill overwrites buf with pseudo-random bytes, used to dirty a large block
// before a background write so on-device compression/dedup can't shortcut it.
func (s *Source) Fill(buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < len(buf); i += 8 {
		v := s.rng.Uint64()
		for j := 0; j < 8 && i+j < len(buf); j++ {
			buf[i+j] = byte(v >> (8 * uint(j)))
		}
	}
}

// AlignedOffset returns a uniform random multiple of unit in [0, count*unit),
// i.e. the n-th valid slot (n in [0, count)) scaled to a byte offset.
func (s *Source) AlignedOffset(count int64, unit int64) int64 {
	return s.Int63n(count) * unit
}
