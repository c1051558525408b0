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

package blockdev

import (
	"path/filepath"

	"github.com/act-project/actgo/internal/histogram"
)

// Device is one raw block device under test.
type Device struct {
	Path  string // e.g. /dev/nvme0n1
	Name  string // display name; Probe sets it to the path as given
	Index int    // ordinal n, used for stagger

	CapacityBytes  int64
	MinOpBytes     int64 // smallest successful direct-I/O transfer size
	ReadBytes      int64 // rounded-up per-small-read transfer size
	NumLargeBlocks int64
	NumReadOffsets int64

	RawReads *histogram.Histogram // per-device raw-read histogram

	fds *fdPool
}

// Basename returns the device's /sys/block/<basename> component, used to
// locate its scheduler attribute.
func (d *Device) Basename() string {
	return filepath.Base(d.Path)
}

// AcquireFD borrows a RawFile from the device's pool.
func (d *Device) AcquireFD() (RawFile, error) {
	return d.fds.Acquire()
}

// ReleaseFD returns a RawFile to the device's pool after a successful op.
func (d *Device) ReleaseFD(f RawFile) {
	d.fds.Release(f)
}

// DiscardFD closes a RawFile without pooling it, after an I/O error.
func (d *Device) DiscardFD(f RawFile) {
	d.fds.Discard(f)
}

// CloseFDs closes every cached descriptor. Called once at shutdown.
func (d *Device) CloseFDs() {
	d.fds.Close()
}

// LargeBlockOffset returns the byte offset of the o-th large block.
func (d *Device) LargeBlockOffset(o int64, largeBlockBytes int64) int64 {
	return o * largeBlockBytes
}

// ReadOffset returns the byte offset of the o-th valid small-read slot.
func (d *Device) ReadOffset(o int64) int64 {
	return o * d.MinOpBytes
}
