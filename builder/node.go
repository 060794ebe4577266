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

// nodeFixedSize is ID + Lon + Lat + Visible + HasInfo + Info.
const nodeFixedSize = 8 + 4 + 4 + 1 + 1 + infoSize

// NodeBuilder writes a Node item: its id, coordinates, visibility and
// optional info block, plus (via Tags) a nested tag list.
type NodeBuilder struct {
	*Builder
}

// NewNode opens a Node item. If info is non-nil and info.User is
// non-empty, a UserName item is written immediately, nested ahead of
// whatever the caller adds via Tags.
func NewNode(buf *memory.Buffer, id model.ID, lon, lat model.Degrees, visible bool, info *model.Info) (*NodeBuilder, error) {
	fixed := make([]byte, nodeFixedSize)
	putInt64(fixed[0:8], int64(id))
	putInt32(fixed[8:12], lon.E7())
	putInt32(fixed[12:16], lat.E7())

	if visible {
		fixed[16] = 1
	}

	if info != nil {
		fixed[17] = 1
		putInfo(fixed[18:18+infoSize], info)
	}

	b, err := open(buf, memory.TypeNode, fixed)
	if err != nil {
		return nil, fmt.Errorf("builder: new node: %w", err)
	}

	nb := &NodeBuilder{Builder: b}

	if info != nil && info.User != "" {
		un, err := NewUserName(buf, info.UID, info.User)
		if err != nil {
			return nil, err
		}

		if err := un.Close(); err != nil {
			return nil, err
		}
	}

	return nb, nil
}

// Tags opens this node's tag list. The caller must Close it before
// closing the NodeBuilder.
func (nb *NodeBuilder) Tags() (*TagListBuilder, error) {
	return Tags(nb.buf)
}

// Node is the decoded view of a Node item and its nested records.
type Node struct {
	ID      model.ID
	Lon     model.Degrees
	Lat     model.Degrees
	Visible bool
	Info    *model.Info
	Tags    map[string]string
}

// ReadNode decodes a Node item, including its nested UserName and
// TagList, if present, by scanning the child items packed inside its
// payload, immediately after its fixed fields.
func ReadNode(buf *memory.Buffer, it memory.Item) (Node, error) {
	if it.Type != memory.TypeNode {
		return Node{}, fmt.Errorf("builder: item at %d is not Node", it.Offset)
	}

	p := buf.Payload(it)
	if len(p) < nodeFixedSize {
		return Node{}, fmt.Errorf("builder: truncated Node item at %d", it.Offset)
	}

	n := Node{
		ID:      model.ID(getInt64(p[0:8])),
		Lon:     model.Degrees(float64(getInt32(p[8:12])) / float64(model.TenMillionths)),
		Lat:     model.Degrees(float64(getInt32(p[12:16])) / float64(model.TenMillionths)),
		Visible: p[16] != 0,
		Info:    getInfo(p[18:18+infoSize], p[17] != 0),
	}

	end := it.Offset + int(it.Size)

	for cur := it.Offset + memory.HeaderSize + nodeFixedSize; cur < end; {
		next, err := buf.Item(cur)
		if err != nil {
			break
		}

		switch next.Type {
		case memory.TypeUserName:
			un, err := ReadUserName(buf, next)
			if err != nil {
				return Node{}, err
			}

			if n.Info != nil {
				n.Info.User = un.Name
			}
		case memory.TypeTagList:
			tags, err := ReadTags(buf, next)
			if err != nil {
				return Node{}, err
			}

			n.Tags = tags
		default:
			return n, nil
		}

		cur += int(next.Size)
	}

	return n, nil
}
