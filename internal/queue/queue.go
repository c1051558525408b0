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

// Package queue is the multi-producer/multi-consumer blocking queue the
// workload engine treats as an external collaborator: a FIFO with a timed
// pop, used both to transport read requests from the producer to the worker
// pool and, per device, to pool file descriptors.
package queue

import "time"

// Queue is a generic FIFO backed by a buffered channel.
type Queue[T any] struct {
	ch chan T
}

// New creates a Queue with the given buffer capacity.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push enqueues v, blocking if the queue is at capacity.
func (q *Queue[T]) Push(v T) {
	q.ch <- v
}

// TryPush enqueues v without blocking. It reports whether the value was
// accepted; false means the queue was full.
func (q *Queue[T]) TryPush(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Pop blocks until a value is available or timeout elapses, returning
// ok=false on timeout.
func (q *Queue[T]) Pop(timeout time.Duration) (v T, ok bool) {
	select {
	case v, open := <-q.ch:
		return v, open
	case <-time.After(timeout):
		return v, false
	}
}

// TryPop returns immediately: ok is false if nothing was queued.
func (q *Queue[T]) TryPop() (v T, ok bool) {
	select {
	case v, open := <-q.ch:
		return v, open
	default:
		return v, false
	}
}

// Close closes the underlying channel. After Close, Push panics; Pop/TryPop
// drain any buffered values and then return ok=false.
func (q *Queue[T]) Close() {
	close(q.ch)
}

// Len reports the number of values currently buffered.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}
