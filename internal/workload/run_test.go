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

package workload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/act-project/actgo/internal/histogram"
)

func TestNewComputesMaxReadBytesAcrossDevices(t *testing.T) {
	devices := newStubDevices(t, 3)
	// All three stub devices share the same geometry (same size/record
	// size), so maxReadBytes should equal any one of their ReadBytes.
	r := New(Config{NumQueues: 2, Scale: histogram.Micros}, devices)
	assert.Equal(t, devices[0].ReadBytes, r.maxReadBytes)
}

func TestStopIsIdempotent(t *testing.T) {
	devices := newStubDevices(t, 1)
	r := New(Config{NumQueues: 1, Scale: histogram.Micros}, devices)
	r.running.Store(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop("concurrent stop")
		}()
	}
	wg.Wait()

	assert.False(t, r.IsRunning())
}

func TestQueuedIncrementDecrementRoundTrips(t *testing.T) {
	devices := newStubDevices(t, 1)
	r := New(Config{NumQueues: 1, Scale: histogram.Micros}, devices)

	r.incQueued()
	r.incQueued()
	assert.Equal(t, int64(2), r.Queued())
	r.decQueued()
	assert.Equal(t, int64(1), r.Queued())
}
