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
	"fmt"

	"m4o.io/o5m/memory"
	"m4o.io/o5m/model"
)

// relationFixedSize is ID + Visible + HasInfo + Info.
const relationFixedSize = 8 + 1 + 1 + infoSize

// RelationBuilder writes a Relation item: its id, visibility and
// optional info block, plus (via Members and Tags) nested lists.
type RelationBuilder struct {
	*Builder
}

// NewRelation opens a Relation item, writing a UserName item immediately
// if info carries one.
func NewRelation(buf *memory.Buffer, id model.ID, visible bool, info *model.Info) (*RelationBuilder, error) {
	fixed := make([]byte, relationFixedSize)
	putInt64(fixed[0:8], int64(id))

	if visible {
		fixed[8] = 1
	}

	if info != nil {
		fixed[9] = 1
		putInfo(fixed[10:10+infoSize], info)
	}

	b, err := open(buf, memory.TypeRelation, fixed)
	if err != nil {
		return nil, fmt.Errorf("builder: new relation: %w", err)
	}

	rb := &RelationBuilder{Builder: b}

	if info != nil && info.User != "" {
		un, err := NewUserName(buf, info.UID, info.User)
		if err != nil {
			return nil, err
		}

		if err := un.Close(); err != nil {
			return nil, err
		}
	}

	return rb, nil
}

// Members opens this relation's member list.
func (rb *RelationBuilder) Members() (*RelationMemberListBuilder, error) {
	return Members(rb.buf)
}

// Tags opens this relation's tag list.
func (rb *RelationBuilder) Tags() (*TagListBuilder, error) {
	return Tags(rb.buf)
}

// Relation is the decoded view of a Relation item and its nested
// records.
type Relation struct {
	ID      model.ID
	Visible bool
	Info    *model.Info
	Members []Member
	Tags    map[string]string
}

// ReadRelation decodes a Relation item, including its nested UserName,
// RelationMemberList and TagList, if present, by scanning the child
// items packed inside its payload, immediately after its fixed fields.
func ReadRelation(buf *memory.Buffer, it memory.Item) (Relation, error) {
	if it.Type != memory.TypeRelation {
		return Relation{}, fmt.Errorf("builder: item at %d is not Relation", it.Offset)
	}

	p := buf.Payload(it)
	if len(p) < relationFixedSize {
		return Relation{}, fmt.Errorf("builder: truncated Relation item at %d", it.Offset)
	}

	r := Relation{
		ID:      model.ID(getInt64(p[0:8])),
		Visible: p[8] != 0,
		Info:    getInfo(p[10:10+infoSize], p[9] != 0),
	}

	end := it.Offset + int(it.Size)

	for cur := it.Offset + memory.HeaderSize + relationFixedSize; cur < end; {
		next, err := buf.Item(cur)
		if err != nil {
			break
		}

		switch next.Type {
		case memory.TypeUserName:
			un, err := ReadUserName(buf, next)
			if err != nil {
				return Relation{}, err
			}

			if r.Info != nil {
				r.Info.User = un.Name
			}
		case memory.TypeRelationMemberList:
			members, err := ReadMembers(buf, next)
			if err != nil {
				return Relation{}, err
			}

			r.Members = members
		case memory.TypeTagList:
			tags, err := ReadTags(buf, next)
			if err != nil {
				return Relation{}, err
			}

			r.Tags = tags
		default:
			return r, nil
		}

		cur += int(next.Size)
	}

	return r, nil
}
