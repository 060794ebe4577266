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

package o5m

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// cursor reads varints, zigzag-varints, raw bytes and C strings out of a
// single dataset record's already fully-buffered payload.
type cursor struct {
	b []byte
}

func (c *cursor) eof() bool { return len(c.b) == 0 }

func (c *cursor) peekByte() (byte, bool) {
	if len(c.b) == 0 {
		return 0, false
	}

	return c.b[0], true
}

func (c *cursor) advance(n int) {
	if n > len(c.b) {
		n = len(c.b)
	}

	c.b = c.b[n:]
}

func (c *cursor) readByte() (byte, bool) {
	b, ok := c.peekByte()
	if ok {
		c.advance(1)
	}

	return b, ok
}

func (c *cursor) bytes(n int) ([]byte, bool) {
	if n > len(c.b) {
		return nil, false
	}

	out := c.b[:n]
	c.b = c.b[n:]

	return out, true
}

// cstring reads bytes up to and not including the next NUL, consuming
// the NUL as well.
func (c *cursor) cstring() ([]byte, bool) {
	i := bytes.IndexByte(c.b, 0)
	if i < 0 {
		return nil, false
	}

	s := c.b[:i]
	c.b = c.b[i+1:]

	return s, true
}

func (c *cursor) varint() (uint64, bool) {
	v, n := protowire.ConsumeVarint(c.b)
	if n < 0 {
		return 0, false
	}

	c.b = c.b[n:]

	return v, true
}

func (c *cursor) zigzag() (int64, bool) {
	v, ok := c.varint()
	if !ok {
		return 0, false
	}

	return protowire.DecodeZigZag(v), true
}

func (c *cursor) remaining() []byte { return c.b }

func appendVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}
