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

package model

import "fmt"

// ID identifies a node, way, relation or changeset.
type ID int64

// UID identifies the OSM user that authored an edit.
type UID int32

// MemberType is the type of a relation member, encoded in o5m as a single
// ASCII digit ('0', '1' or '2').
type MemberType uint8

const (
	NodeMember MemberType = iota
	WayMember
	RelationMember
)

func (t MemberType) String() string {
	switch t {
	case NodeMember:
		return "node"
	case WayMember:
		return "way"
	case RelationMember:
		return "relation"
	default:
		return fmt.Sprintf("MemberType(%d)", uint8(t))
	}
}

// ParseMemberType decodes the single-character member type o5m encodes
// relation members with.
func ParseMemberType(c byte) (MemberType, error) {
	switch c {
	case '0':
		return NodeMember, nil
	case '1':
		return WayMember, nil
	case '2':
		return RelationMember, nil
	default:
		return 0, fmt.Errorf("invalid member type %q", c)
	}
}
