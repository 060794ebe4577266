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

// Package builder writes items into a memory.Buffer. A Builder is Go's
// explicit, Close-scoped stand-in for libosmium's RAII item builders:
// the destructor that patches an item's final size into its header
// becomes a Close call the caller must make, typically via defer.
//
// Builders nest: a NodeBuilder's TagListBuilder must Close before the
// NodeBuilder itself does. Closing out of that order, or leaving a
// nested builder open when the outer one closes, is a LogicError from
// the underlying Buffer.
package builder

import (
	"encoding/binary"
	"fmt"

	"m4o.io/o5m/memory"
)

// Builder reserves an item header on construction and patches its size
// field on Close, once every field and nested sub-builder has been
// written.
type Builder struct {
	buf    *memory.Buffer
	offset int
	depth  int
	closed bool
}

// open reserves a header plus fixed (already-encoded) fields for typ and
// opens the buffer's builder-nesting guard.
func open(buf *memory.Buffer, typ memory.ItemType, fixed []byte) (*Builder, error) {
	offset, err := buf.Append(make([]byte, memory.HeaderSize))
	if err != nil {
		return nil, fmt.Errorf("builder: reserve header: %w", err)
	}

	if err := buf.WriteHeaderAt(offset, typ, 0); err != nil {
		return nil, fmt.Errorf("builder: write header: %w", err)
	}

	if len(fixed) > 0 {
		if _, err := buf.Append(fixed); err != nil {
			return nil, fmt.Errorf("builder: write fixed fields: %w", err)
		}
	}

	depth := buf.BuilderOpened()

	return &Builder{buf: buf, offset: offset, depth: depth}, nil
}

// Offset is the item's header offset in its buffer, stable once Close
// has returned (useful for recording a WayNodeList/RelationMemberList
// back-pointer).
func (b *Builder) Offset() int { return b.offset }

// Close pads the item to memory.Align and patches its header's size
// field. It is an error to call Close twice, or out of LIFO order with
// respect to a still-open nested builder.
func (b *Builder) Close() error {
	if b.closed {
		return fmt.Errorf("builder: already closed")
	}

	if _, err := b.buf.PadToAlign(); err != nil {
		return fmt.Errorf("builder: pad: %w", err)
	}

	size := b.buf.Written() - b.offset

	if err := b.buf.PatchSize(b.offset, uint32(size)); err != nil {
		return fmt.Errorf("builder: patch size: %w", err)
	}

	if err := b.buf.BuilderClosed(b.depth); err != nil {
		return fmt.Errorf("builder: close: %w", err)
	}

	b.closed = true

	return nil
}

// append writes data immediately after whatever this builder has
// written so far, without requiring Close to have run yet. listBuilder
// uses it to add entries; open writes headers and fixed fields through
// the buffer directly.
func (b *Builder) append(data []byte) (int, error) {
	return b.buf.Append(data)
}

// lengthPrefixSize is the width of the explicit byte-count prefix a
// listBuilder writes before its variable-length content. Padding added
// by Close to reach memory.Align would otherwise be indistinguishable
// from an empty trailing entry.
const lengthPrefixSize = 4

// listBuilder is the shared shape of TagListBuilder, WayNodeListBuilder
// and RelationMemberListBuilder: a nested item whose payload is a
// 4-byte length prefix followed by that many bytes of packed entries.
type listBuilder struct {
	*Builder
	lengthOffset int
	dataLen      int
}

func openList(buf *memory.Buffer, typ memory.ItemType) (*listBuilder, error) {
	b, err := open(buf, typ, make([]byte, lengthPrefixSize))
	if err != nil {
		return nil, err
	}

	return &listBuilder{Builder: b, lengthOffset: b.offset + memory.HeaderSize}, nil
}

func (lb *listBuilder) appendData(data []byte) error {
	if _, err := lb.append(data); err != nil {
		return err
	}

	lb.dataLen += len(data)

	return nil
}

// Close writes the accumulated length prefix before delegating to
// Builder.Close for the usual pad-and-patch-size dance.
func (lb *listBuilder) Close() error {
	binary.LittleEndian.PutUint32(lb.buf.Raw(lb.lengthOffset, lengthPrefixSize), uint32(lb.dataLen))

	return lb.Builder.Close()
}

// listPayload splits a listBuilder item's payload into its declared
// data region, stripping any Align padding Close added.
func listPayload(buf *memory.Buffer, it memory.Item) ([]byte, error) {
	p := buf.Payload(it)
	if len(p) < lengthPrefixSize {
		return nil, fmt.Errorf("builder: truncated list item at %d", it.Offset)
	}

	n := int(binary.LittleEndian.Uint32(p[0:lengthPrefixSize]))
	p = p[lengthPrefixSize:]

	if n > len(p) {
		return nil, fmt.Errorf("builder: corrupt list length in item at %d", it.Offset)
	}

	return p[:n], nil
}
