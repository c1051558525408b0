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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/act-project/actgo/internal/blockdev"
	"github.com/act-project/actgo/internal/histogram"
)

func TestServiceRequestDecrementsQueuedExactlyOnceOnSuccess(t *testing.T) {
	devices := newStubDevices(t, 1)
	r := New(Config{
		NumQueues:       1,
		ThreadsPerQueue: 1,
		RecordSizeBytes: 1536,
		Scale:           histogram.Micros,
	}, devices)

	r.queued.Store(1)
	buf := blockdev.AlignedBuffer(int(r.maxReadBytes))
	req := readRequest{
		deviceIndex: 0,
		offset:      0,
		size:        devices[0].ReadBytes,
		enqueuedAt:  time.Now(),
	}

	r.serviceRequest(req, buf)
	assert.Equal(t, int64(0), r.Queued())
	assert.Equal(t, int64(1), r.rawReads.TotalCount())
	assert.Equal(t, int64(1), r.endToEnd.TotalCount())
}

func TestServiceRequestDecrementsQueuedExactlyOnceOnError(t *testing.T) {
	devices := newStubDevices(t, 1)
	r := New(Config{
		NumQueues:       1,
		ThreadsPerQueue: 1,
		RecordSizeBytes: 1536,
		Scale:           histogram.Micros,
	}, devices)

	r.queued.Store(1)
	buf := blockdev.AlignedBuffer(int(r.maxReadBytes))
	// An offset past the device's (4MiB) capacity makes ReadAt fail.
	req := readRequest{
		deviceIndex: 0,
		offset:      1 << 30,
		size:        devices[0].ReadBytes,
		enqueuedAt:  time.Now(),
	}

	r.serviceRequest(req, buf)
	assert.Equal(t, int64(0), r.Queued())
	assert.Equal(t, int64(0), r.rawReads.TotalCount(), "a failed read must not record a latency sample")
}

func TestWorkerExitsWhenRunStopped(t *testing.T) {
	devices := newStubDevices(t, 1)
	r := New(Config{
		NumQueues:       1,
		ThreadsPerQueue: 1,
		RecordSizeBytes: 1536,
		Scale:           histogram.Micros,
	}, devices)
	r.running.Store(true)

	r.wg.Add(1)
	done := make(chan struct{})
	go func() {
		r.worker(r.queues[0])
		close(done)
	}()

	// Give the worker a chance to block on its first timed pop, then stop
	// the run; it must return within one pop-timeout window.
	time.Sleep(10 * time.Millisecond)
	r.Stop("test done")

	select {
	case <-done:
	case <-time.After(2 * workerPopTimeout):
		t.Fatal("worker did not exit after running flipped false")
	}
	r.wg.Wait()
}
