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
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedBufferIsAlignedAndExactSize(t *testing.T) {
	for _, size := range []int{1, 511, 512, 4095, 4096, 131072} {
		buf := AlignedBuffer(size)
		require.Len(t, buf, size)
		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "size=%d", size)
	}
}

func TestAlignedBufferCapDoesNotOverrunBackingArray(t *testing.T) {
	buf := AlignedBuffer(100)
	assert.Equal(t, 100, cap(buf))
}

func newTempFile(t *testing.T, size int64) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "actgo-stub-*")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return f.Name()
}

func TestStubFileReadWriteRoundTrip(t *testing.T) {
	path := newTempFile(t, 4096)
	f, err := OpenStub(path)
	require.NoError(t, err)
	defer f.Close()

	out := AlignedBuffer(512)
	for i := range out {
		out[i] = byte(i)
	}
	n, err := f.WriteAt(out, 0)
	require.NoError(t, err)
	assert.Equal(t, 512, n)

	in := AlignedBuffer(512)
	n, err = f.ReadAt(in, 0)
	require.NoError(t, err)
	assert.Equal(t, 512, n)
	assert.Equal(t, out, in)
}

func TestStubFileSizeMatchesTruncatedLength(t *testing.T) {
	path := newTempFile(t, 1<<20)
	f, err := OpenStub(path)
	require.NoError(t, err)
	defer f.Close()

	sized, ok := f.(interface{ Size() (int64, error) })
	require.True(t, ok)
	n, err := sized.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), n)
}

func TestOpenDirectRejectsMissingPath(t *testing.T) {
	_, err := OpenDirect(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
