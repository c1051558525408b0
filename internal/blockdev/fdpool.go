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
	"github.com/act-project/actgo/internal/queue"
)

// fdPool hands out RawFile handles opened against one device path, reusing
// them across operations instead of opening a fresh fd per I/O.
type fdPool struct {
	path string
	open OpenFunc
	pool *queue.Queue[RawFile]
}

func newFdPool(path string, open OpenFunc, capacity int) *fdPool {
	return &fdPool{path: path, open: open, pool: queue.New[RawFile](capacity)}
}

// Acquire returns a cached handle if one is available, otherwise opens a new
// one against the pool's device path.
func (p *fdPool) Acquire() (RawFile, error) {
	if f, ok := p.pool.TryPop(); ok {
		return f, nil
	}
	return p.open(p.path)
}

// Release returns f to the pool. If the pool is momentarily full the handle
// is closed rather than leaked.
func (p *fdPool) Release(f RawFile) {
	if !p.pool.TryPush(f) {
		_ = f.Close()
	}
}

// Discard closes f without returning it to the pool; used after an I/O error
// so a corrupt descriptor never gets reused.
func (p *fdPool) Discard(f RawFile) {
	_ = f.Close()
}

// Close drains the pool, closing every cached handle.
func (p *fdPool) Close() {
	for {
		f, ok := p.pool.TryPop()
		if !ok {
			return
		}
		_ = f.Close()
	}
}
