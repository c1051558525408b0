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
	"syscall"
	"unsafe"

	"github.com/mendersoftware/progressbar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/act-project/actgo/internal/histogram"
)

// ioctlRequestValue holds an ioctl request number; blockDeviceSize converts
// it to uintptr for Syscall's request argument and passes a pointer to the
// result as the third argument.
type ioctlRequestValue uintptr

const blkgetsize64 ioctlRequestValue = unix.BLKGETSIZE64

// ProbeConfig carries the parameters Probe needs beyond the device path
// itself: the record size the small-read transfer must cover, and the scale
// each per-device histogram records in.
type ProbeConfig struct {
	RecordSizeBytes int64
	Scale           histogram.Scale
	FDPoolSize      int
	Open            OpenFunc // nil defaults to OpenDirect
}

// Probe discovers capacity and minimum I/O size for every device in paths,
// deriving NumLargeBlocks/ReadBytes/NumReadOffsets, and reports progress on a
// bar sized to len(paths). Fails fast (first error) per device, matching the
// spec's "fails the run" startup semantics.
func Probe(paths []string, largeBlockBytes int64, cfg ProbeConfig) ([]*Device, error) {
	open := cfg.Open
	if open == nil {
		open = OpenDirect
	}

	bar := progressbar.New(int64(len(paths)))
	devices := make([]*Device, 0, len(paths))

	for i, path := range paths {
		dev, err := probeOne(path, i, largeBlockBytes, cfg, open)
		if err != nil {
			return nil, errors.Wrapf(err, "probing device %s", path)
		}
		devices = append(devices, dev)
		bar.Tick(1)
		log.WithFields(log.Fields{
			"device":           dev.Name,
			"capacity_bytes":   dev.CapacityBytes,
			"min_op_bytes":     dev.MinOpBytes,
			"read_bytes":       dev.ReadBytes,
			"num_large_blocks": dev.NumLargeBlocks,
			"num_read_offsets": dev.NumReadOffsets,
		}).Info("device probed")
	}
	bar.Finish()
	return devices, nil
}

func probeOne(path string, index int, largeBlockBytes int64, cfg ProbeConfig, open OpenFunc) (*Device, error) {
	f, err := open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening device")
	}
	defer f.Close()

	capacity, err := blockDeviceSize(f)
	if err != nil {
		return nil, errors.Wrap(err, "querying capacity")
	}
	if capacity == 0 {
		return nil, errors.New("device reports zero capacity")
	}

	minOp, err := discoverMinOpBytes(f, capacity)
	if err != nil {
		return nil, err
	}

	readBytes := roundUp(cfg.RecordSizeBytes, minOp)
	numLargeBlocks := capacity / largeBlockBytes
	numReadOffsets := (capacity - readBytes) / minOp + 1

	if numLargeBlocks < 1 {
		return nil, errors.New("device too small for one large block")
	}
	if numReadOffsets < 1 {
		return nil, errors.New("device too small for one small-read offset")
	}

	dev := &Device{
		Path:           path,
		Name:           path,
		Index:          index,
		CapacityBytes:  capacity,
		MinOpBytes:     minOp,
		ReadBytes:      readBytes,
		NumLargeBlocks: numLargeBlocks,
		NumReadOffsets: numReadOffsets,
		RawReads:       histogram.New(path, cfg.Scale),
		fds:            newFdPool(path, open, cfg.FDPoolSize),
	}
	return dev, nil
}

func roundUp(n, unit int64) int64 {
	if n <= 0 {
		return unit
	}
	if rem := n % unit; rem != 0 {
		return n + (unit - rem)
	}
	return n
}

// discoverMinOpBytes attempts a direct read of increasing power-of-two sizes
// (512 doubling to 4096) and returns the first one that succeeds.
func discoverMinOpBytes(f RawFile, capacity int64) (int64, error) {
	for size := int64(512); size <= 4096; size *= 2 {
		if size > capacity {
			break
		}
		buf := AlignedBuffer(int(size))
		if _, err := f.ReadAt(buf, 0); err == nil {
			return size, nil
		}
	}
	return 0, errors.New("could not discover a working direct-I/O transfer size")
}

// sizer is implemented by RawFiles that can report their size without the
// BLKGETSIZE64 ioctl (regular files, e.g. StubFile, have no block device
// behind them for the ioctl to query).
type sizer interface {
	Size() (int64, error)
}

// blockDeviceSize queries total byte capacity via the BLKGETSIZE64 ioctl.
// golang.org/x/sys/unix exposes the ioctl number but not a typed helper for
// it (it only wraps the SetInt family), so the raw syscall is issued here.
func blockDeviceSize(f RawFile) (int64, error) {
	if s, ok := f.(sizer); ok {
		return s.Size()
	}
	var size uint64
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(),
		uintptr(blkgetsize64), uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, errno
	}
	return int64(size), nil
}
