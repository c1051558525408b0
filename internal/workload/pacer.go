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
)

// pacer implements the scheduling rule shared by the large-block loops and
// the small-read producer: after iteration k, the target cumulative elapsed
// time is computed from the configured rate, and the loop sleeps the
// difference or declares overload if it has fallen more than overloadGrace
// behind.
//
// Target time is computed in float64 microseconds throughout (count * 1e6 *
// scale / rate) rather than as a naive int64 product-then-divide, which is
// prone to overflow on a careless multi-day run.
type pacer struct {
	startOffset time.Duration // stagger shift applied to this loop's clock
	ratePerSec  float64
	scale       float64 // numDevices for large-block loops, 1 for the producer
	count       int64
}

func newPacer(startOffset time.Duration, ratePerSec, scale float64) *pacer {
	return &pacer{startOffset: startOffset, ratePerSec: ratePerSec, scale: scale}
}

// targetElapsed returns the target cumulative elapsed time after the k-th
// iteration (k is 1-based: call after incrementing count).
func (p *pacer) targetElapsed(k int64) time.Duration {
	micros := float64(k) * 1e6 * p.scale / p.ratePerSec
	return time.Duration(micros) * time.Microsecond
}

// tick advances the iteration count and compares the target cumulative
// elapsed time against sinceRunStart shifted by this loop's stagger offset
// (a loop staggered "back" by n*STAGGER behaves as if it started earlier, so
// its effective elapsed time is sinceRunStart+startOffset). It either
// returns how long to sleep to stay on schedule, or reports overload once
// the lag exceeds overloadGrace.
func (p *pacer) tick(sinceRunStart time.Duration) (sleep time.Duration, overloadLag time.Duration, overloaded bool) {
	p.count++
	effective := sinceRunStart + p.startOffset
	target := p.targetElapsed(p.count)
	lag := effective - target
	if lag > overloadGrace {
		return 0, lag, true
	}
	if lag < 0 {
		return -lag, 0, false
	}
	return 0, 0, false
}
