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

package randgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestIntnBounds(t *testing.T) {
	s := New(1)
	for i := 0; i < 1000; i++ {
		v := s.Intn(7)
		assert.True(t, v >= 0 && v < 7)
	}
}

func TestAlignedOffsetIsAMultipleOfUnit(t *testing.T) {
	s := New(7)
	const unit = int64(512)
	const count = int64(40)
	for i := 0; i < 1000; i++ {
		off := s.AlignedOffset(count, unit)
		assert.Equal(t, int64(0), off%unit)
		assert.True(t, off >= 0 && off < count*unit)
	}
}

func TestFillFillsWholeBuffer(t *testing.T) {
	s := New(9)
	buf := make([]byte, 37) // not a multiple of 8, exercises the tail loop
	s.Fill(buf)

	allZero := true
	for _, b := range buf {
		if b != 0 {
			allZero = false
			break
		}
	}
	assert.False(t, allZero, "Fill should not leave the buffer all zeros")
}

func TestSourceIsSafeForConcurrentUse(t *testing.T) {
	s := New(3)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Intn(100)
				s.Int63n(100)
			}
		}()
	}
	wg.Wait()
}
