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

// Package workload is the load-generation and measurement engine: the
// rate-controlled producer, the fan-out queues and worker pools, the
// per-device large-block reader/writer pair, and the reporting loop. It is
// the core this whole tool exists to implement.
package workload

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/act-project/actgo/internal/blockdev"
	"github.com/act-project/actgo/internal/clock"
	"github.com/act-project/actgo/internal/histogram"
	"github.com/act-project/actgo/internal/queue"
	"github.com/act-project/actgo/internal/randgen"
)

// MaxReadReqsQueued is the queued-request ceiling; exceeding it trips
// overload.
const MaxReadReqsQueued = 100_000

// Stagger and RWStagger space out per-device large-block loop start times so
// they don't all fire in lock-step.
const (
	Stagger   = time.Millisecond
	RWStagger = 500 * time.Microsecond
)

// overloadGrace is how far behind schedule a paced loop may fall before it
// declares overload.
const overloadGrace = 10 * time.Second

// workerPopTimeout bounds how long a worker blocks on an empty queue before
// re-checking the running flag.
const workerPopTimeout = 100 * time.Millisecond

// Config carries every tunable the lifecycle needs to start a Run.
type Config struct {
	LargeBlockBytes   int64
	LargeBlockOpsPerSec float64
	WriteOpsPerSec    float64 // 0 disables writers (and the matching readers)
	ReadReqsPerSec    float64
	RecordSizeBytes   int64
	NumQueues         int
	ThreadsPerQueue   int
	RunDuration       time.Duration
	ReportInterval    time.Duration
	Scale             histogram.Scale
	Seed              int64
	FDPoolSize        int
}

// Run owns every shared mutable object a workload execution needs: the
// device table, fan-out queues, histograms, and the running/queued state
// every goroutine reads or trips.
type Run struct {
	cfg     Config
	devices []*blockdev.Device
	queues  []*queue.Queue[readRequest]
	rng     *randgen.Source
	clk     *clock.Clock

	running atomic.Bool
	queued  atomic.Int64

	largeBlockReads  *histogram.Histogram
	largeBlockWrites *histogram.Histogram
	rawReads         *histogram.Histogram
	endToEnd         *histogram.Histogram

	maxReadBytes int64

	wg sync.WaitGroup
}

// readRequest is a scheduled small read: owning device, offset, size, and
// the instant it was enqueued. Consumed exactly once, by exactly one worker.
type readRequest struct {
	deviceIndex int
	offset      int64
	size        int64
	enqueuedAt  time.Time
}

// New builds a Run over the given probed devices. Histograms and queues are
// allocated here; the clock and running flag are set later, by Start, right
// before the staggered goroutines launch.
func New(cfg Config, devices []*blockdev.Device) *Run {
	queues := make([]*queue.Queue[readRequest], cfg.NumQueues)
	for i := range queues {
		queues[i] = queue.New[readRequest](MaxReadReqsQueued)
	}

	var maxReadBytes int64
	for _, d := range devices {
		if d.ReadBytes > maxReadBytes {
			maxReadBytes = d.ReadBytes
		}
	}

	return &Run{
		cfg:              cfg,
		devices:          devices,
		queues:           queues,
		rng:              randgen.New(cfg.Seed),
		largeBlockReads:  histogram.New("LARGE BLOCK READS", cfg.Scale),
		largeBlockWrites: histogram.New("LARGE BLOCK WRITES", cfg.Scale),
		rawReads:         histogram.New("RAW READS", cfg.Scale),
		endToEnd:         histogram.New("READS", cfg.Scale),
		maxReadBytes:     maxReadBytes,
	}
}

// IsRunning reports the current value of the running flag.
func (r *Run) IsRunning() bool {
	return r.running.Load()
}

// Stop idempotently flips running to false; repeated calls are no-ops after
// the first.
func (r *Run) Stop(reason string) {
	if r.running.CompareAndSwap(true, false) {
		log.WithField("reason", reason).Warn("run stopping")
	}
}

// Queued returns the current queued-request count.
func (r *Run) Queued() int64 {
	return r.queued.Load()
}

func (r *Run) incQueued() int64 {
	return r.queued.Add(1)
}

func (r *Run) decQueued() {
	r.queued.Add(-1)
}
