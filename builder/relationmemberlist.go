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

package builder

import (
	"bytes"
	"fmt"

	"m4o.io/o5m/memory"
	"m4o.io/o5m/model"
)

// RelationMemberListBuilder accumulates a relation's members, in order:
// each is a 1-byte member type, an 8-byte id, and a NUL-terminated role.
type RelationMemberListBuilder struct {
	*listBuilder
}

// Members opens a nested RelationMemberListBuilder within the still-open
// parent RelationBuilder.
func Members(buf *memory.Buffer) (*RelationMemberListBuilder, error) {
	lb, err := openList(buf, memory.TypeRelationMemberList)
	if err != nil {
		return nil, fmt.Errorf("builder: new relation member list: %w", err)
	}

	return &RelationMemberListBuilder{listBuilder: lb}, nil
}

// AddMember appends one relation member.
func (ml *RelationMemberListBuilder) AddMember(t model.MemberType, id model.ID, role string) error {
	if bytes.IndexByte([]byte(role), 0) >= 0 {
		return fmt.Errorf("builder: role must not contain NUL")
	}

	enc := make([]byte, 0, 1+8+len(role)+1)
	enc = append(enc, byte(t))

	var idBuf [8]byte
	putInt64(idBuf[:], int64(id))
	enc = append(enc, idBuf[:]...)
	enc = append(enc, role...)
	enc = append(enc, 0)

	if err := ml.appendData(enc); err != nil {
		return fmt.Errorf("builder: add member: %w", err)
	}

	return nil
}

// Member is the decoded view of one relation member.
type Member struct {
	Type model.MemberType
	ID   model.ID
	Role string
}

// ReadMembers decodes a RelationMemberList item's payload into an
// ordered member slice.
func ReadMembers(buf *memory.Buffer, it memory.Item) ([]Member, error) {
	if it.Type != memory.TypeRelationMemberList {
		return nil, fmt.Errorf("builder: item at %d is not RelationMemberList", it.Offset)
	}

	p, err := listPayload(buf, it)
	if err != nil {
		return nil, err
	}

	var members []Member

	for len(p) > 0 {
		if len(p) < 9 {
			return nil, fmt.Errorf("builder: truncated member in item at %d", it.Offset)
		}

		t := model.MemberType(p[0])
		id := model.ID(getInt64(p[1:9]))
		p = p[9:]

		roleEnd := bytes.IndexByte(p, 0)
		if roleEnd < 0 {
			return nil, fmt.Errorf("builder: truncated role in item at %d", it.Offset)
		}

		members = append(members, Member{Type: t, ID: id, Role: string(p[:roleEnd])})
		p = p[roleEnd+1:]
	}

	return members, nil
}
