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

// Package clock provides the monotonic timestamps the workload engine paces
// and measures against. A single Clock is created at run-start and shared by
// every goroutine; all readings are relative to that instant.
package clock

import "time"

// Clock hands out monotonic readings relative to the moment it was created.
type Clock struct {
	start time.Time
}

// New captures the run-start instant. Must be called exactly once, before any
// paced loop begins.
func New() *Clock {
	return &Clock{start: time.Now()}
}

// Start returns the instant the clock was created.
func (c *Clock) Start() time.Time {
	return c.start
}

// Elapsed returns the monotonic duration since the clock was created.
func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.start)
}

// ElapsedMicros returns Elapsed truncated to microseconds.
func (c *Clock) ElapsedMicros() int64 {
	return Elapsed(c.start)
}

// Elapsed returns the monotonic microseconds elapsed since t.
func Elapsed(t time.Time) int64 {
	return time.Since(t).Microseconds()
}

// SinceNanos returns the non-negative nanosecond delta between two instants,
// saturating to zero instead of going negative (the original clock helper's
// behavior when a goroutine observes a stale or reordered timestamp pair).
func SinceNanos(start, end time.Time) int64 {
	d := end.Sub(start).Nanoseconds()
	if d < 0 {
		return 0
	}
	return d
}
