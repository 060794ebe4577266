// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package core holds scratch-buffer infrastructure shared by the rest
// of the module: a sync.Pool-backed byte buffer used wherever code needs
// a short-lived staging area (today only the o5m decoder's chunked-input
// reassembly window) without paying a fresh allocation on every use.
package core

import (
	"bytes"
	"io"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// PooledBuffer is a bytes.Buffer borrowed from a package-level sync.Pool.
// Close returns it to the pool; using a PooledBuffer after Close is a
// programming error, same as using a closed *os.File.
type PooledBuffer struct {
	buf *bytes.Buffer
}

// NewPooledBuffer borrows a buffer from the pool, already reset.
func NewPooledBuffer() *PooledBuffer {
	b := bufferPool.Get().(*bytes.Buffer)
	b.Reset()

	return &PooledBuffer{buf: b}
}

// Reset discards the buffer's contents without returning it to the pool.
func (p *PooledBuffer) Reset() { p.buf.Reset() }

// Grow ensures at least n more bytes of capacity, the same contract as
// bytes.Buffer.Grow.
func (p *PooledBuffer) Grow(n int) { p.buf.Grow(n) }

// Cap returns the buffer's current capacity.
func (p *PooledBuffer) Cap() int { return p.buf.Cap() }

// Len returns the number of unread bytes.
func (p *PooledBuffer) Len() int { return p.buf.Len() }

// Bytes returns the unread portion of the buffer. It is valid only
// until the next mutating call.
func (p *PooledBuffer) Bytes() []byte { return p.buf.Bytes() }

// Write appends b to the buffer.
func (p *PooledBuffer) Write(b []byte) (int, error) { return p.buf.Write(b) }

// Next returns the next n bytes and advances past them, as
// bytes.Buffer.Next does.
func (p *PooledBuffer) Next(n int) []byte { return p.buf.Next(n) }

// ReadFrom reads from r until EOF or error, growing as needed.
func (p *PooledBuffer) ReadFrom(r io.Reader) (int64, error) { return p.buf.ReadFrom(r) }

// Close returns the underlying buffer to the pool. The PooledBuffer must
// not be used afterward.
func (p *PooledBuffer) Close() error {
	if p.buf == nil {
		return nil
	}

	bufferPool.Put(p.buf)
	p.buf = nil

	return nil
}
