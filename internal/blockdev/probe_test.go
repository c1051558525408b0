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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-project/actgo/internal/histogram"
)

// probeTestConfig mirrors cli's wiring but defaults to OpenStub, standing in
// for a real /dev node with a preallocated regular file.
func probeTestConfig(recordSize int64) ProbeConfig {
	return ProbeConfig{
		RecordSizeBytes: recordSize,
		Scale:           histogram.Micros,
		FDPoolSize:      2,
		Open:            OpenStub,
	}
}

func TestProbeDerivesGeometryFromCapacity(t *testing.T) {
	// capacity=1MiB, large block=128KiB -> 8 large blocks.
	// record size 1536 is already a multiple of the discovered 512-byte
	// min-op, so read_bytes passes through unchanged.
	const capacity = 1 << 20
	path := newTempFile(t, capacity)

	devices, err := Probe([]string{path}, 128*1024, probeTestConfig(1536))
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d := devices[0]
	assert.Equal(t, int64(capacity), d.CapacityBytes)
	assert.Equal(t, int64(512), d.MinOpBytes)
	assert.Equal(t, int64(1536), d.ReadBytes)
	assert.Equal(t, int64(8), d.NumLargeBlocks)
	assert.Equal(t, (int64(capacity)-1536)/512+1, d.NumReadOffsets)
	d.CloseFDs()
}

func TestProbeAssignsDeviceIndexInOrder(t *testing.T) {
	paths := []string{
		newTempFile(t, 1<<20),
		newTempFile(t, 1<<20),
		newTempFile(t, 1<<20),
	}
	devices, err := Probe(paths, 128*1024, probeTestConfig(1536))
	require.NoError(t, err)
	require.Len(t, devices, 3)
	for i, d := range devices {
		assert.Equal(t, i, d.Index)
		d.CloseFDs()
	}
}

func TestProbeFailsOnDeviceTooSmallForOneLargeBlock(t *testing.T) {
	path := newTempFile(t, 4096)
	_, err := Probe([]string{path}, 128*1024, probeTestConfig(1536))
	assert.Error(t, err)
}

func TestRoundUpToUnit(t *testing.T) {
	assert.Equal(t, int64(512), roundUp(0, 512))
	assert.Equal(t, int64(512), roundUp(1, 512))
	assert.Equal(t, int64(512), roundUp(512, 512))
	assert.Equal(t, int64(1024), roundUp(513, 512))
	assert.Equal(t, int64(1536), roundUp(1536, 512))
}
