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

package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/o5m/memory"
)

// makeItem builds a fully-encoded item: an 8-byte header followed by
// payload, padded to Align.
func makeItem(t memory.ItemType, payload []byte) []byte {
	size := memory.Align
	for size < 8+len(payload) {
		size += memory.Align
	}

	raw := make([]byte, size)
	raw[0] = byte(t)
	binLE32(raw[4:8], uint32(size))
	copy(raw[8:], payload)

	return raw
}

func binLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func TestBuffer_PushBackAndIterate(t *testing.T) {
	buf := memory.NewBuffer(64, memory.GrowNone)

	_, err := buf.PushBack(makeItem(memory.TypeNode, []byte("abc")))
	assert.NoError(t, err)

	_, err = buf.PushBack(makeItem(memory.TypeWay, []byte("xy")))
	assert.NoError(t, err)

	it := buf.Iterator()

	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeNode, item.Type)

	item, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeWay, item.Type)

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestBuffer_AddItemDoesNotCommit(t *testing.T) {
	buf := memory.NewBuffer(64, memory.GrowNone)

	_, err := buf.AddItem(makeItem(memory.TypeNode, nil))
	assert.NoError(t, err)
	assert.Equal(t, 0, buf.Committed())
	assert.Greater(t, buf.Written(), 0)

	_, err = buf.Commit()
	assert.NoError(t, err)
	assert.Equal(t, buf.Written(), buf.Committed())
}

func TestBuffer_Rollback(t *testing.T) {
	buf := memory.NewBuffer(64, memory.GrowNone)

	_, err := buf.PushBack(makeItem(memory.TypeNode, nil))
	assert.NoError(t, err)

	committed := buf.Committed()

	_, err = buf.AddItem(makeItem(memory.TypeWay, nil))
	assert.NoError(t, err)
	assert.Greater(t, buf.Written(), committed)

	buf.Rollback()
	assert.Equal(t, committed, buf.Written())
	assert.Equal(t, committed, buf.Committed())
}

func TestBuffer_GrowNoneReturnsBufferFull(t *testing.T) {
	buf := memory.NewBuffer(8, memory.GrowNone)

	_, err := buf.PushBack(makeItem(memory.TypeNode, []byte("way too much payload for one item")))

	var bufErr *memory.BufferError
	assert.ErrorAs(t, err, &bufErr)
	assert.Equal(t, memory.BufferFull, bufErr.Kind)
}

func TestBuffer_GrowReallocPreservesData(t *testing.T) {
	buf := memory.NewBuffer(8, memory.GrowRealloc)

	_, err := buf.PushBack(makeItem(memory.TypeNode, []byte("hello world, this needs more than 8 bytes")))
	assert.NoError(t, err)
	assert.Greater(t, buf.Capacity(), 8)

	it := buf.Iterator()
	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeNode, item.Type)
}

func TestBuffer_GrowChainDetachesFilledSegment(t *testing.T) {
	buf := memory.NewBuffer(16, memory.GrowChain)

	_, err := buf.PushBack(makeItem(memory.TypeNode, make([]byte, 8))) // fills the 16-byte buffer exactly
	assert.NoError(t, err)
	assert.False(t, buf.HasChain())

	_, err = buf.PushBack(makeItem(memory.TypeWay, nil))
	assert.NoError(t, err)
	assert.True(t, buf.HasChain())

	deepest := buf.DetachDeepest()
	assert.NotNil(t, deepest)
	assert.False(t, buf.HasChain())

	it := deepest.Iterator()
	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeNode, item.Type)
}

func TestBuffer_GrowChainDoesNotFragmentUncommittedRecord(t *testing.T) {
	buf := memory.NewBuffer(16, memory.GrowChain)

	// A single record built in two pieces, neither committed, whose
	// combined size overruns the buffer's capacity. Detaching here
	// would split the record across the chain boundary, so this must
	// fall through to a realloc instead.
	_, err := buf.Append(make([]byte, 10))
	assert.NoError(t, err)

	_, err = buf.Append(make([]byte, 10))
	assert.NoError(t, err)

	assert.False(t, buf.HasChain())
	assert.Equal(t, 20, buf.Written())
	assert.GreaterOrEqual(t, buf.Capacity(), 20)
}

func TestBuffer_GrowChainEscalatesToReallocWhenStillTooSmall(t *testing.T) {
	buf := memory.NewBuffer(8, memory.GrowChain)

	_, err := buf.PushBack(makeItem(memory.TypeNode, nil)) // fills the 8-byte buffer
	assert.NoError(t, err)

	// Bigger than a fresh same-capacity (8 byte) buffer could ever hold.
	_, err = buf.PushBack(makeItem(memory.TypeWay, []byte("far too big for a single 8 byte segment")))
	assert.NoError(t, err)
	assert.True(t, buf.HasChain())
	assert.Greater(t, buf.Capacity(), 8)
}

func TestBuffer_PurgeRemoved(t *testing.T) {
	buf := memory.NewBuffer(64, memory.GrowNone)

	off1, err := buf.PushBack(makeItem(memory.TypeNode, []byte("a")))
	assert.NoError(t, err)

	off2, err := buf.PushBack(makeItem(memory.TypeNode, []byte("b")))
	assert.NoError(t, err)

	off3, err := buf.PushBack(makeItem(memory.TypeNode, []byte("c")))
	assert.NoError(t, err)

	assert.NoError(t, buf.SetRemoved(off1))

	var moves [][2]int
	err = buf.PurgeRemoved(func(old, new int) {
		moves = append(moves, [2]int{old, new})
	})
	assert.NoError(t, err)

	assert.Equal(t, [][2]int{{off2, off1}, {off3, off2}}, moves)

	var types []memory.ItemType

	it := buf.Iterator()
	for {
		item, ok := it.Next()
		if !ok {
			break
		}

		types = append(types, item.Type)
	}

	assert.Len(t, types, 2)
}

func TestBuffer_ExternalBufferCannotGrow(t *testing.T) {
	data := make([]byte, 8)
	buf := memory.NewExternalBuffer(data)

	_, err := buf.PushBack(makeItem(memory.TypeNode, []byte("too big to fit")))

	var bufErr *memory.BufferError
	assert.ErrorAs(t, err, &bufErr)
	assert.Equal(t, memory.BufferFull, bufErr.Kind)
}

func TestBuffer_CommitRefusesWhileBuilderOpen(t *testing.T) {
	buf := memory.NewBuffer(64, memory.GrowNone)
	depth := buf.BuilderOpened()

	_, err := buf.Commit()

	var bufErr *memory.BufferError
	assert.ErrorAs(t, err, &bufErr)
	assert.Equal(t, memory.LogicError, bufErr.Kind)

	assert.NoError(t, buf.BuilderClosed(depth))

	_, err = buf.Commit()
	assert.NoError(t, err)
}

func TestBuffer_AddBufferCopiesCommittedBytesOnly(t *testing.T) {
	src := memory.NewBuffer(64, memory.GrowNone)
	_, err := src.PushBack(makeItem(memory.TypeNode, []byte("x")))
	assert.NoError(t, err)

	_, err = src.AddItem(makeItem(memory.TypeWay, []byte("uncommitted")))
	assert.NoError(t, err)

	dst := memory.NewBuffer(64, memory.GrowNone)
	assert.NoError(t, dst.AddBuffer(src))

	_, err = dst.Commit()
	assert.NoError(t, err)

	it := dst.Iterator()

	item, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeNode, item.Type)

	_, ok = it.Next()
	assert.False(t, ok)
}
