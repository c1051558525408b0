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
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/act-project/actgo/internal/clock"
	"github.com/act-project/actgo/internal/schedmode"
)

// Start drives a Run end to end: it optionally sets each
// device's I/O scheduler, staggers goroutine start so per-device large-block
// loops don't all fire in lock-step, launches the large-block, worker and
// producer goroutines, then blocks in the reporting loop until the
// configured duration elapses or something trips Stop. It returns only once
// every spawned goroutine has exited and every device fd has been closed.
func (r *Run) Start(w io.Writer, schedMode string) {
	if schedMode != "" {
		for _, dev := range r.devices {
			schedmode.Apply(dev.Basename(), schedMode)
		}
	}

	// Stagger launch so the first device's large-block loops aren't all
	// waking at the same instant as the last device's.
	time.Sleep(time.Duration(len(r.devices)+1) * Stagger)

	r.clk = clock.New()
	r.running.Store(true)

	if r.cfg.WriteOpsPerSec != 0 {
		for _, dev := range r.devices {
			r.wg.Add(1)
			go r.largeBlockLoop(dev, true)
		}
		for _, dev := range r.devices {
			r.wg.Add(1)
			go r.largeBlockLoop(dev, false)
		}
	}

	for _, q := range r.queues {
		for i := 0; i < r.cfg.ThreadsPerQueue; i++ {
			q := q
			r.wg.Add(1)
			go r.worker(q)
		}
	}

	r.wg.Add(1)
	go r.producer()

	log.WithFields(log.Fields{
		"devices":     len(r.devices),
		"queues":      len(r.queues),
		"threads":     r.cfg.ThreadsPerQueue,
		"readReqsSec": r.cfg.ReadReqsPerSec,
	}).Info("run started")

	r.reportLoop(w, r.cfg.RunDuration)

	r.Stop("run duration elapsed")
	r.wg.Wait()

	for _, dev := range r.devices {
		dev.CloseFDs()
	}
}
