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

package memory

// GrowMode controls what Reserve does when a request does not fit in the
// remaining capacity.
type GrowMode int

const (
	// GrowNone refuses the request; Reserve returns a BufferFull
	// error. This is the only mode valid for external, caller-owned
	// storage.
	GrowNone GrowMode = iota

	// GrowRealloc doubles capacity as many times as needed to fit the
	// request and copies the written prefix into fresh storage.
	GrowRealloc

	// GrowChain detaches the filled buffer into an owned predecessor
	// list and installs fresh, same-capacity storage. If nothing is
	// committed yet, or a record is still being written past the last
	// commit, detaching would split that record, so this falls through
	// to GrowRealloc instead. It also
	// escalates to GrowRealloc if the fresh buffer still can't fit the
	// request.
	GrowChain
)

// Buffer is a contiguous arena of self-describing, length-prefixed items.
// Bytes [0, committed) are visible to readers; bytes [committed, written)
// are reserved but not yet committed (typically because a Builder is
// still writing into them); bytes [written, capacity) are free.
type Buffer struct {
	data      []byte
	capacity  int
	written   int
	committed int
	growMode  GrowMode
	owned     bool // false for NewExternalBuffer: Reserve never grows it

	chain *Buffer // predecessor segment, set by GrowChain detaches

	builderDepth int
}

// NewBuffer allocates an internally owned buffer of the given capacity
// (rounded up to Align), growable per mode.
func NewBuffer(capacity int, mode GrowMode) *Buffer {
	capacity = alignUp(capacity)
	if capacity < Align {
		capacity = Align
	}

	return &Buffer{
		data:     make([]byte, capacity),
		capacity: capacity,
		growMode: mode,
		owned:    true,
	}
}

// NewExternalBuffer wraps caller-owned storage. The buffer never grows:
// data's length is both its capacity and the ceiling on Reserve.
func NewExternalBuffer(data []byte) *Buffer {
	return &Buffer{
		data:     data,
		capacity: len(data),
		growMode: GrowNone,
		owned:    false,
	}
}

func (b *Buffer) Capacity() int  { return b.capacity }
func (b *Buffer) Written() int   { return b.written }
func (b *Buffer) Committed() int { return b.committed }
func (b *Buffer) IsEmpty() bool  { return b.committed == 0 }

// Bytes returns the committed region. The slice is only valid until the
// next Reserve call that triggers a grow.
func (b *Buffer) Bytes() []byte { return b.data[:b.committed] }

// BuilderOpened records that a Builder has started writing into this
// buffer and returns its nesting depth. Commit, Clear, AddBuffer and
// PurgeRemoved refuse to run while any builder is open, mirroring
// libosmium's debug builder count. Rollback and the iterators do not
// check.
func (b *Buffer) BuilderOpened() int {
	b.builderDepth++

	return b.builderDepth
}

// BuilderClosed records that the builder opened at depth finished. It is
// a LogicError to close out of LIFO order, or with no builder open.
func (b *Buffer) BuilderClosed(depth int) error {
	if b.builderDepth == 0 {
		return newError(LogicError, "builder closed with none open")
	}

	if b.builderDepth != depth {
		return newError(LogicError, "builder closed out of order")
	}

	b.builderDepth--

	return nil
}

func (b *Buffer) assertNoOpenBuilder() error {
	if b.builderDepth != 0 {
		return newError(LogicError, "operation requires all builders closed")
	}

	return nil
}

// Reserve grows the written region by size (rounded up to Align) and
// returns the offset of the new region, applying the buffer's GrowMode
// if the request does not fit. The region is zero-filled but not
// committed.
func (b *Buffer) Reserve(size int) (int, error) {
	return b.reserveRaw(alignUp(size))
}

// reserveRaw is Reserve without the Align rounding, used internally and
// by the builder package to pack a record's sub-fields contiguously;
// the caller is responsible for calling PadToAlign before the region is
// treated as a committable item.
func (b *Buffer) reserveRaw(size int) (int, error) {
	if b.written+size > b.capacity {
		if err := b.grow(size); err != nil {
			return 0, err
		}
	}

	offset := b.written
	b.written += size

	for i := offset; i < offset+size; i++ {
		b.data[i] = 0
	}

	return offset, nil
}

// Append reserves exactly len(data) unaligned bytes and copies data into
// them, returning the offset. Builders use this to pack a record's
// fields back to back without padding between them.
func (b *Buffer) Append(data []byte) (int, error) {
	offset, err := b.reserveRaw(len(data))
	if err != nil {
		return 0, err
	}

	copy(b.data[offset:], data)

	return offset, nil
}

// PadToAlign appends zero bytes, if necessary, so that Written is a
// multiple of Align. It returns the number of padding bytes added.
func (b *Buffer) PadToAlign() (int, error) {
	rem := b.written % Align
	if rem == 0 {
		return 0, nil
	}

	pad := Align - rem

	if _, err := b.Append(make([]byte, pad)); err != nil {
		return 0, err
	}

	return pad, nil
}

// WriteHeaderAt sets the type and flags of the item header at offset,
// leaving its size field at 0 for a later PatchSize. offset must fall
// within the written (not necessarily committed) region.
func (b *Buffer) WriteHeaderAt(offset int, typ ItemType, flags ItemFlags) error {
	if offset < 0 || offset+headerSize > b.written {
		return newError(InvalidArgument, "offset out of range")
	}

	encodeHeader(b.data[offset:offset+headerSize], typ, flags, 0)

	return nil
}

// PatchSize sets the size field of the item header at offset. Builders
// call this on Close, once the record's total padded length is known.
func (b *Buffer) PatchSize(offset int, size uint32) error {
	if offset < 0 || offset+headerSize > b.written {
		return newError(InvalidArgument, "offset out of range")
	}

	typ, flags, _ := decodeHeader(b.data[offset : offset+headerSize])
	encodeHeader(b.data[offset:offset+headerSize], typ, flags, size)

	return nil
}

// Raw exposes a read-write slice into the buffer's backing storage, for
// the builder package's field encoders. The slice is valid only until
// the next call that may trigger a grow.
func (b *Buffer) Raw(offset, length int) []byte {
	return b.data[offset : offset+length]
}

func (b *Buffer) grow(size int) error {
	if !b.owned {
		return newError(BufferFull, "external buffer cannot grow")
	}

	switch b.growMode {
	case GrowNone:
		return newError(BufferFull, "buffer is full")
	case GrowRealloc:
		b.realloc(b.written + size)
	case GrowChain:
		if b.committed > 0 && b.written == b.committed {
			b.detachIntoChain()
		}

		if b.written+size > b.capacity {
			b.realloc(b.written + size)
		}
	default:
		return newError(BufferFull, "buffer is full")
	}

	return nil
}

func (b *Buffer) realloc(minCapacity int) {
	newCap := b.capacity
	if newCap == 0 {
		newCap = Align
	}

	for newCap < minCapacity {
		newCap *= 2
	}

	fresh := make([]byte, newCap)
	copy(fresh, b.data[:b.written])
	b.data = fresh
	b.capacity = newCap
}

// detachIntoChain moves the currently filled buffer into an owned
// predecessor segment and installs fresh, same-capacity storage in its
// place.
func (b *Buffer) detachIntoChain() {
	full := &Buffer{
		data:      b.data,
		capacity:  b.capacity,
		written:   b.written,
		committed: b.committed,
		growMode:  b.growMode,
		owned:     b.owned,
		chain:     b.chain,
	}

	b.chain = full
	b.data = make([]byte, b.capacity)
	b.written = 0
	b.committed = 0
}

// HasChain reports whether this buffer has detached predecessor segments.
func (b *Buffer) HasChain() bool { return b.chain != nil }

// DetachDeepest removes and returns the oldest (deepest) predecessor
// segment in the chain, or nil if there is none. Callers drain a chain
// deepest-first so segments are consumed in the order they were written.
func (b *Buffer) DetachDeepest() *Buffer {
	if b.chain == nil {
		return nil
	}

	if b.chain.chain == nil {
		deepest := b.chain
		b.chain = nil

		return deepest
	}

	cur := b
	for cur.chain.chain != nil {
		cur = cur.chain
	}

	deepest := cur.chain
	cur.chain = nil

	return deepest
}

// AddItem reserves space for raw (a fully-encoded item: header + payload)
// and copies it in, without committing.
func (b *Buffer) AddItem(raw []byte) (int, error) {
	offset, err := b.Reserve(len(raw))
	if err != nil {
		return 0, err
	}

	copy(b.data[offset:], raw)

	return offset, nil
}

// PushBack adds an item and immediately commits it.
func (b *Buffer) PushBack(raw []byte) (int, error) {
	offset, err := b.AddItem(raw)
	if err != nil {
		return 0, err
	}

	if _, err := b.Commit(); err != nil {
		return 0, err
	}

	return offset, nil
}

// AddBuffer bulk-copies src's committed bytes into this buffer, without
// committing them here. The caller commits explicitly, which lets several
// AddBuffer calls be committed as one unit.
func (b *Buffer) AddBuffer(src *Buffer) error {
	if err := b.assertNoOpenBuilder(); err != nil {
		return err
	}

	n := src.Committed()
	if n == 0 {
		return nil
	}

	offset, err := b.Reserve(alignUp(n))
	if err != nil {
		return err
	}

	copy(b.data[offset:], src.data[:n])

	return nil
}

// Commit advances committed to written, returning the prior committed
// offset. It is a LogicError to commit while a Builder is open.
func (b *Buffer) Commit() (int, error) {
	if err := b.assertNoOpenBuilder(); err != nil {
		return 0, err
	}

	prior := b.committed
	b.committed = b.written

	return prior, nil
}

// Rollback discards everything written since the last commit.
func (b *Buffer) Rollback() {
	b.written = b.committed
}

// Clear empties the buffer, returning the prior committed offset. It is
// a LogicError to clear while a Builder is open.
func (b *Buffer) Clear() (int, error) {
	if err := b.assertNoOpenBuilder(); err != nil {
		return 0, err
	}

	prior := b.committed
	b.written = 0
	b.committed = 0

	return prior, nil
}

// Item decodes the record header at offset. offset must be within the
// committed region.
func (b *Buffer) Item(offset int) (Item, error) {
	if offset < 0 || offset+headerSize > b.committed {
		return Item{}, newError(InvalidArgument, "offset out of range")
	}

	typ, flags, size := decodeHeader(b.data[offset : offset+headerSize])

	if size < headerSize || offset+int(size) > b.committed {
		return Item{}, newError(InvalidArgument, "corrupt item size")
	}

	return Item{Type: typ, Flags: flags, Offset: offset, Size: size}, nil
}

// Payload returns the bytes following it's header.
func (b *Buffer) Payload(it Item) []byte {
	return b.data[it.Offset+headerSize : it.Offset+int(it.Size)]
}

// SetRemoved flags the item at offset as removed, for later PurgeRemoved.
func (b *Buffer) SetRemoved(offset int) error {
	if offset < 0 || offset+headerSize > b.committed {
		return newError(InvalidArgument, "offset out of range")
	}

	flags := ItemFlags(0)

	typ, _, size := decodeHeader(b.data[offset : offset+headerSize])
	flags |= Removed
	encodeHeader(b.data[offset:offset+headerSize], typ, flags, size)

	return nil
}

// PurgeRemoved compacts the buffer in place, dropping every item flagged
// Removed. moved, if non-nil, is invoked once per surviving item that
// changed offset, in ascending order, with its old and new offsets.
func (b *Buffer) PurgeRemoved(moved func(oldOffset, newOffset int)) error {
	if err := b.assertNoOpenBuilder(); err != nil {
		return err
	}

	read, write := 0, 0

	for read < b.committed {
		typ, flags, size := decodeHeader(b.data[read : read+headerSize])
		n := int(size)

		if flags&Removed != 0 {
			read += n
			continue
		}

		if write != read {
			copy(b.data[write:write+n], b.data[read:read+n])

			if moved != nil {
				moved(read, write)
			}
		}

		_ = typ

		write += n
		read += n
	}

	b.written = write
	b.committed = write

	return nil
}
