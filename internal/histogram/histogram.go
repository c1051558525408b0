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

// Package histogram records latency samples concurrently from many goroutines
// and dumps a textual summary from the reporting loop while inserts may still
// be in flight. The bucket layout itself is delegated to hdrhistogram-go; this
// package only owns the scale (microseconds vs milliseconds) and the stdout
// dump format.
package histogram

import (
	"fmt"
	"io"
	"sync"
	"time"

	hdr "github.com/HdrHistogram/hdrhistogram-go"
)

// Scale selects the bucket unit a Histogram records in.
type Scale int

const (
	// Micros records latencies with microsecond resolution.
	Micros Scale = iota
	// Millis records latencies with millisecond resolution, 1000x coarser.
	Millis
)

const (
	// sigFigs is the number of significant decimal digits hdrhistogram-go
	// preserves per bucket; 3 is the library's own recommended default and
	// matches what the pack's blk-latency tracer uses for the same purpose.
	sigFigs = 3
	maxMicros = 60 * 1000 * 1000
	maxMillis = 60 * 1000
)

// Histogram accumulates latency samples under one label, safe for concurrent
// Record calls and for a concurrent Dump.
type Histogram struct {
	label string
	scale Scale

	mu sync.Mutex
	h  *hdr.Histogram
}

// New creates an empty Histogram recording in the given scale.
func New(label string, scale Scale) *Histogram {
	max := int64(maxMicros)
	if scale == Millis {
		max = maxMillis
	}
	return &Histogram{
		label: label,
		scale: scale,
		h:     hdr.New(1, max, sigFigs),
	}
}

// Record adds a sample measured as a duration, converting to the
// histogram's configured scale and saturating to zero on a negative delta.
// Any value below one unit (including zero) is recorded as 1, the lowest
// value the underlying histogram tracks.
func (h *Histogram) Record(d time.Duration) {
	if d < 0 {
		d = 0
	}
	var v int64
	if h.scale == Millis {
		v = d.Milliseconds()
	} else {
		v = d.Microseconds()
	}
	if v < 1 {
		v = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.h.RecordValue(v)
}

// TotalCount returns the number of samples recorded so far.
func (h *Histogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.h.TotalCount()
}

// Dump writes a one-line summary (sample count, mean, p50/p90/p99/p99.9 and
// max) labeled with deviceName, or h.label when deviceName is empty, to w.
// It is safe to call while other goroutines are still calling Record: the
// snapshot it reads may miss a sample recorded mid-dump; exact values
// during a live run are not required.
func (h *Histogram) Dump(w io.Writer, deviceName string) {
	unit := "us"
	if h.scale == Millis {
		unit = "ms"
	}
	if deviceName == "" {
		deviceName = h.label
	}

	h.mu.Lock()
	n := h.h.TotalCount()
	if n == 0 {
		h.mu.Unlock()
		fmt.Fprintf(w, "    %-18s %9d samples\n", deviceName, 0)
		return
	}
	mean := h.h.Mean()
	p50 := h.h.ValueAtQuantile(50)
	p90 := h.h.ValueAtQuantile(90)
	p99 := h.h.ValueAtQuantile(99)
	p999 := h.h.ValueAtQuantile(99.9)
	max := h.h.Max()
	h.mu.Unlock()

	fmt.Fprintf(w, "    %-18s %9d samples  avg %8.1f%s  p50 %6d%s  p90 %6d%s  p99 %6d%s  p99.9 %6d%s  max %6d%s\n",
		deviceName, n, mean, unit, p50, unit, p90, unit, p99, unit, p999, unit, max, unit)
}
