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

// Package memory implements the item buffer: a contiguous, growable arena
// that stores heterogeneous, self-describing, variable-length records
// without a per-record heap allocation.
package memory

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// Align is the byte alignment every item, and every buffer offset, is
// padded to.
const Align = 8

// HeaderSize is the size in bytes of the item header every record in a
// Buffer starts with: a 2-byte type, a 2-byte flag set and a 4-byte total
// size (header included, padded to Align).
const HeaderSize = 8

const headerSize = HeaderSize

// ItemType is the closed set of record kinds an item buffer can hold.
type ItemType uint16

const (
	Undefined ItemType = iota
	TypeNode
	TypeWay
	TypeRelation
	TypeChangeset
	TypeArea
	TypeTagList
	TypeWayNodeList
	TypeRelationMemberList
	TypeOuterRing
	TypeInnerRing
	TypeUserName
)

func (t ItemType) String() string {
	switch t {
	case TypeNode:
		return "Node"
	case TypeWay:
		return "Way"
	case TypeRelation:
		return "Relation"
	case TypeChangeset:
		return "Changeset"
	case TypeArea:
		return "Area"
	case TypeTagList:
		return "TagList"
	case TypeWayNodeList:
		return "WayNodeList"
	case TypeRelationMemberList:
		return "RelationMemberList"
	case TypeOuterRing:
		return "OuterRing"
	case TypeInnerRing:
		return "InnerRing"
	case TypeUserName:
		return "UserName"
	default:
		return "Undefined"
	}
}

// ItemFlags is a bit set stored alongside an item's type.
type ItemFlags uint16

// Removed marks an item as logically deleted; PurgeRemoved drops it on
// the next compaction.
const Removed ItemFlags = 1 << 0

// Item is a decoded view of a record header at some offset in a Buffer.
// It does not copy the payload; use Buffer.Payload to read it.
type Item struct {
	Type   ItemType
	Flags  ItemFlags
	Offset int
	Size   uint32 // header + payload, padded to Align
}

func (it Item) Removed() bool { return it.Flags&Removed != 0 }

// alignUp rounds n up to the next multiple of Align.
func alignUp[T constraints.Integer](n T) T {
	if rem := n % Align; rem != 0 {
		n += Align - rem
	}

	return n
}

func decodeHeader(b []byte) (typ ItemType, flags ItemFlags, size uint32) {
	typ = ItemType(binary.LittleEndian.Uint16(b[0:2]))
	flags = ItemFlags(binary.LittleEndian.Uint16(b[2:4]))
	size = binary.LittleEndian.Uint32(b[4:8])

	return
}

func encodeHeader(b []byte, typ ItemType, flags ItemFlags, size uint32) {
	binary.LittleEndian.PutUint16(b[0:2], uint16(typ))
	binary.LittleEndian.PutUint16(b[2:4], uint16(flags))
	binary.LittleEndian.PutUint32(b[4:8], size)
}
