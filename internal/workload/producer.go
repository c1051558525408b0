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
	"time"

	log "github.com/sirupsen/logrus"
)

// producer is the single goroutine that fabricates read requests at the
// configured rate and round-robins them across the fan-out queues. There is
// exactly one producer per Run.
func (r *Run) producer() {
	defer r.wg.Done()

	pc := newPacer(0, r.cfg.ReadReqsPerSec, 1)
	numQueues := int64(len(r.queues))
	var count int64

	for r.IsRunning() {
		if r.incQueued() > MaxReadReqsQueued {
			r.decQueued()
			log.Error("too many read reqs queued")
			r.Stop("read request backlog exceeded ceiling")
			return
		}

		queueIdx := count % numQueues
		devIdx := r.rng.Intn(len(r.devices))
		dev := r.devices[devIdx]

		req := readRequest{
			deviceIndex: devIdx,
			offset:      dev.ReadOffset(r.rng.Int63n(dev.NumReadOffsets)),
			size:        dev.ReadBytes,
			enqueuedAt:  time.Now(),
		}
		r.queues[queueIdx].Push(req)
		count++

		sleep, lag, overloaded := pc.tick(r.clk.Elapsed())
		if overloaded {
			log.WithField("lag", lag).Error("producer fell too far behind schedule")
			r.Stop("producer pacing overload")
			return
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}
