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

// datasetType is the single byte o5m prefixes every record with.
type datasetType byte

const (
	datasetNode        datasetType = 0x10
	datasetWay         datasetType = 0x11
	datasetRelation    datasetType = 0x12
	datasetBoundingBox datasetType = 0xdb
	datasetTimestamp   datasetType = 0xdc
	datasetHeader      datasetType = 0xe0
	datasetSync        datasetType = 0xee
	datasetJump        datasetType = 0xef
	datasetReset       datasetType = 0xff
)

// hasLengthPrefix reports whether t's record is followed by a varint
// length and that many payload bytes. No byte above datasetJump (Reset
// included) carries a length prefix; everything at or below datasetJump
// does.
func (t datasetType) hasLengthPrefix() bool {
	return t <= datasetJump
}

// magicHeader is the fixed 5-byte prelude every o5m/o5c stream starts
// with, before the one-byte file type and one-byte format version.
var magicHeader = [5]byte{0xff, 0xe0, 0x04, 'o', '5'}

const (
	fileTypeO5m = 'm'
	fileTypeO5c = 'c'

	formatVersion2 = '2'
)

// EntityMask selects which top-level entity types a Decoder commits to
// its output. Bounding box and timestamp records are always decoded
// into the Header regardless of this mask.
type EntityMask uint8

const (
	MaskNode EntityMask = 1 << iota
	MaskWay
	MaskRelation

	MaskAll = MaskNode | MaskWay | MaskRelation
)

func (m EntityMask) includes(t datasetType) bool {
	switch t {
	case datasetNode:
		return m&MaskNode != 0
	case datasetWay:
		return m&MaskWay != 0
	case datasetRelation:
		return m&MaskRelation != 0
	default:
		return false
	}
}
