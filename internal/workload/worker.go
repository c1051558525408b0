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
	"github.com/act-project/actgo/internal/queue"
)

// worker drains one specific fan-out queue. A pre-allocated, page-aligned
// buffer sized to the widest ReadBytes across all devices is allocated once
// here and reused for every request, since Go has no variable-length stack
// arrays to allocate one per request from.
func (r *Run) worker(q *queue.Queue[readRequest]) {
	defer r.wg.Done()

	buf := blockdev.AlignedBuffer(int(r.maxReadBytes))

	for {
		req, ok := q.Pop(workerPopTimeout)
		if !ok {
			if !r.IsRunning() {
				return
			}
			continue
		}
		r.serviceRequest(req, buf)
	}
}

func (r *Run) serviceRequest(req readRequest, buf []byte) {
	defer r.decQueued()

	dev := r.devices[req.deviceIndex]
	fd, err := dev.AcquireFD()
	if err != nil {
		log.WithError(err).WithField("device", dev.Name).Error("worker: failed to acquire fd")
		return
	}

	readBuf := buf[:req.size]
	start := time.Now()
	_, err = fd.ReadAt(readBuf, req.offset)
	end := time.Now()

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"device": dev.Name,
			"offset": req.offset,
		}).Error("small read failed")
		dev.DiscardFD(fd)
		return
	}
	dev.ReleaseFD(fd)

	raw := time.Duration(clock.SinceNanos(start, end))
	r.rawReads.Record(raw)
	dev.RawReads.Record(raw)

	endToEnd := time.Duration(clock.SinceNanos(req.enqueuedAt, end))
	r.endToEnd.Record(endToEnd)
}
