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

// Package blockdev discovers raw block devices and performs aligned, direct
// (unbuffered) I/O against them, using the BLKGETSIZE64 ioctl to read device
// capacity.
package blockdev

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Alignment is the buffer alignment direct I/O requires; 4096 is the worst
// case across the min-op-bytes values this tool ever discovers (512 or 4096).
const Alignment = 4096

// RawFile is the seek-free I/O surface a device FD needs. Two
// implementations exist: unixDirectFile (real O_DIRECT) and StubFile (a
// preallocated regular file standing in for a block device in tests).
type RawFile interface {
	ReadAt(buf []byte, offset int64) (int, error)
	WriteAt(buf []byte, offset int64) (int, error)
	Close() error
	Fd() uintptr
}

// OpenFunc opens path for direct read/write I/O. Swappable so tests can open
// a StubFile instead of a real device node.
type OpenFunc func(path string) (RawFile, error)

// OpenDirect is the production OpenFunc: opens path with O_DIRECT|O_RDWR.
func OpenDirect(path string) (RawFile, error) {
	fd, err := unix.Open(path, unix.O_DIRECT|unix.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &unixDirectFile{fd: fd}, nil
}

type unixDirectFile struct {
	fd int
}

func (f *unixDirectFile) ReadAt(buf []byte, offset int64) (int, error) {
	return unix.Pread(f.fd, buf, offset)
}

func (f *unixDirectFile) WriteAt(buf []byte, offset int64) (int, error) {
	return unix.Pwrite(f.fd, buf, offset)
}

func (f *unixDirectFile) Close() error {
	return unix.Close(f.fd)
}

func (f *unixDirectFile) Fd() uintptr {
	return uintptr(f.fd)
}

// StubFile backs RawFile with a regular, preallocated file. Used by tests
// (and available to callers running against a loop-mounted or plain file
// instead of a real /dev node, where O_DIRECT semantics aren't required to
// exercise the engine's pacing/aggregation logic).
type StubFile struct {
	f *os.File
}

// OpenStub opens path as a StubFile, matching the RawFile/OpenFunc contract.
func OpenStub(path string) (RawFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &StubFile{f: f}, nil
}

func (s *StubFile) ReadAt(buf []byte, offset int64) (int, error) {
	return s.f.ReadAt(buf, offset)
}

func (s *StubFile) WriteAt(buf []byte, offset int64) (int, error) {
	return s.f.WriteAt(buf, offset)
}

func (s *StubFile) Close() error {
	return s.f.Close()
}

func (s *StubFile) Fd() uintptr {
	return s.f.Fd()
}

// Size reports the backing file's length, standing in for the BLKGETSIZE64
// ioctl query a real block device would answer.
func (s *StubFile) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// AlignedBuffer allocates a buffer of exactly size bytes whose start address
// is aligned to Alignment, by over-allocating and slicing. Direct I/O on
// Linux rejects unaligned buffers outright; Go gives no alignment guarantee
// on slice backing arrays, so the start is aligned by hand: over-allocate by
// Alignment bytes and slice off however much padding is needed to land the
// start address on a 4096-byte boundary.
func AlignedBuffer(size int) []byte {
	buf := make([]byte, size+Alignment)
	ptr := uintptr(unsafe.Pointer(&buf[0]))
	pad := (Alignment - int(ptr%Alignment)) % Alignment
	return buf[pad : pad+size : pad+size]
}
