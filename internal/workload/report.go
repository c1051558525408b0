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
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// reportLoop runs on the Run's calling goroutine. It wakes on a fixed
// cadence until the configured duration elapses or another
// component trips running to false, printing the queued count and every
// histogram dump each tick.
func (r *Run) reportLoop(w io.Writer, stopAfter time.Duration) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	var count int64
	for r.IsRunning() {
		count++
		target := time.Duration(count) * r.cfg.ReportInterval
		if stopAfter > 0 && target > stopAfter {
			return
		}
		sleepFor := target - r.clk.Elapsed()
		if sleepFor > 0 {
			time.Sleep(sleepFor)
		}
		if !r.IsRunning() {
			return
		}
		r.dumpTick(w, target, isTTY)
	}
}

func (r *Run) dumpTick(w io.Writer, target time.Duration, isTTY bool) {
	if isTTY {
		fmt.Fprintf(w, "\nAfter %d sec:\n", int64(target.Seconds()))
	} else {
		fmt.Fprintf(w, "After %d sec:\n", int64(target.Seconds()))
	}
	fmt.Fprintf(w, "  queued: %d\n", r.Queued())

	r.largeBlockReads.Dump(w, "")
	r.largeBlockWrites.Dump(w, "")
	r.rawReads.Dump(w, "")
	for _, dev := range r.devices {
		dev.RawReads.Dump(w, dev.Name)
	}
	r.endToEnd.Dump(w, "")
}
