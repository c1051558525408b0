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

	"github.com/act-project/actgo/internal/blockdev"
	"github.com/act-project/actgo/internal/clock"
)

// largeBlockLoop drives one device's background large-block reader or
// writer. Exactly one goroutine per device per role is spawned; both share
// this function, distinguished by isWrite.
func (r *Run) largeBlockLoop(dev *blockdev.Device, isWrite bool) {
	defer r.wg.Done()

	role := "read"
	hist := r.largeBlockReads
	offset := Stagger * time.Duration(dev.Index)
	if isWrite {
		role = "write"
		hist = r.largeBlockWrites
		offset += RWStagger
	}
	// Stagger shifts the loop's logical start earlier, which this pacer
	// realizes as a positive startOffset added to elapsed.
	pc := newPacer(offset, r.cfg.LargeBlockOpsPerSec, float64(len(r.devices)))

	buf := blockdev.AlignedBuffer(int(r.cfg.LargeBlockBytes))

	for r.IsRunning() {
		fd, err := dev.AcquireFD()
		if err != nil {
			log.WithError(err).WithField("device", dev.Name).Error("large block: failed to acquire fd")
			time.Sleep(workerPopTimeout)
			continue
		}

		blockIdx := r.rng.Int63n(dev.NumLargeBlocks)
		blockOffset := dev.LargeBlockOffset(blockIdx, r.cfg.LargeBlockBytes)

		if isWrite {
			r.rng.Fill(buf)
		}

		start := time.Now()
		var opErr error
		if isWrite {
			_, opErr = fd.WriteAt(buf, blockOffset)
		} else {
			_, opErr = fd.ReadAt(buf, blockOffset)
		}
		elapsed := clock.SinceNanos(start, time.Now())

		if opErr != nil {
			log.WithError(opErr).WithFields(log.Fields{
				"device": dev.Name,
				"role":   role,
				"offset": blockOffset,
			}).Error("large block I/O failed")
			dev.DiscardFD(fd)
		} else {
			hist.Record(time.Duration(elapsed))
			dev.ReleaseFD(fd)
		}

		sleep, lag, overloaded := pc.tick(r.clk.Elapsed())
		if overloaded {
			log.WithFields(log.Fields{
				"device": dev.Name,
				"role":   role,
				"lag":    lag,
			}).Error("large block loop fell too far behind schedule")
			r.Stop("large block pacing overload: " + role)
			return
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}
