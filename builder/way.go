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

// wayFixedSize is ID + Visible + HasInfo + Info.
const wayFixedSize = 8 + 1 + 1 + infoSize

// WayBuilder writes a Way item: its id, visibility and optional info
// block, plus (via Nodes and Tags) nested lists.
type WayBuilder struct {
	*Builder
}

// NewWay opens a Way item, writing a UserName item immediately if info
// carries one.
func NewWay(buf *memory.Buffer, id model.ID, visible bool, info *model.Info) (*WayBuilder, error) {
	fixed := make([]byte, wayFixedSize)
	putInt64(fixed[0:8], int64(id))

	if visible {
		fixed[8] = 1
	}

	if info != nil {
		fixed[9] = 1
		putInfo(fixed[10:10+infoSize], info)
	}

	b, err := open(buf, memory.TypeWay, fixed)
	if err != nil {
		return nil, fmt.Errorf("builder: new way: %w", err)
	}

	wb := &WayBuilder{Builder: b}

	if info != nil && info.User != "" {
		un, err := NewUserName(buf, info.UID, info.User)
		if err != nil {
			return nil, err
		}

		if err := un.Close(); err != nil {
			return nil, err
		}
	}

	return wb, nil
}

// Nodes opens this way's node reference list.
func (wb *WayBuilder) Nodes() (*WayNodeListBuilder, error) {
	return Nodes(wb.buf)
}

// Tags opens this way's tag list.
func (wb *WayBuilder) Tags() (*TagListBuilder, error) {
	return Tags(wb.buf)
}

// Way is the decoded view of a Way item and its nested records.
type Way struct {
	ID      model.ID
	Visible bool
	Info    *model.Info
	NodeIDs []model.ID
	Tags    map[string]string
}

// ReadWay decodes a Way item, including its nested UserName, WayNodeList
// and TagList, if present, by scanning the child items packed inside its
// payload, immediately after its fixed fields.
func ReadWay(buf *memory.Buffer, it memory.Item) (Way, error) {
	if it.Type != memory.TypeWay {
		return Way{}, fmt.Errorf("builder: item at %d is not Way", it.Offset)
	}

	p := buf.Payload(it)
	if len(p) < wayFixedSize {
		return Way{}, fmt.Errorf("builder: truncated Way item at %d", it.Offset)
	}

	w := Way{
		ID:      model.ID(getInt64(p[0:8])),
		Visible: p[8] != 0,
		Info:    getInfo(p[10:10+infoSize], p[9] != 0),
	}

	end := it.Offset + int(it.Size)

	for cur := it.Offset + memory.HeaderSize + wayFixedSize; cur < end; {
		next, err := buf.Item(cur)
		if err != nil {
			break
		}

		switch next.Type {
		case memory.TypeUserName:
			un, err := ReadUserName(buf, next)
			if err != nil {
				return Way{}, err
			}

			if w.Info != nil {
				w.Info.User = un.Name
			}
		case memory.TypeWayNodeList:
			refs, err := ReadNodeRefs(buf, next)
			if err != nil {
				return Way{}, err
			}

			w.NodeIDs = refs
		case memory.TypeTagList:
			tags, err := ReadTags(buf, next)
			if err != nil {
				return Way{}, err
			}

			w.Tags = tags
		default:
			return w, nil
		}

		cur += int(next.Size)
	}

	return w, nil
}
