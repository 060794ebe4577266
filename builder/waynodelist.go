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

const wayNodeRefSize = 8

// WayNodeListBuilder accumulates a way's node references, in order, as
// packed 8-byte ids.
type WayNodeListBuilder struct {
	*listBuilder
}

// Nodes opens a nested WayNodeListBuilder within the still-open parent
// WayBuilder.
func Nodes(buf *memory.Buffer) (*WayNodeListBuilder, error) {
	lb, err := openList(buf, memory.TypeWayNodeList)
	if err != nil {
		return nil, fmt.Errorf("builder: new way node list: %w", err)
	}

	return &WayNodeListBuilder{listBuilder: lb}, nil
}

// AddNodeRef appends one node id to the list.
func (wl *WayNodeListBuilder) AddNodeRef(id model.ID) error {
	enc := make([]byte, wayNodeRefSize)
	putInt64(enc, int64(id))

	if err := wl.appendData(enc); err != nil {
		return fmt.Errorf("builder: add node ref: %w", err)
	}

	return nil
}

// ReadNodeRefs decodes a WayNodeList item's payload into an ordered id
// slice.
func ReadNodeRefs(buf *memory.Buffer, it memory.Item) ([]model.ID, error) {
	if it.Type != memory.TypeWayNodeList {
		return nil, fmt.Errorf("builder: item at %d is not WayNodeList", it.Offset)
	}

	p, err := listPayload(buf, it)
	if err != nil {
		return nil, err
	}

	if len(p)%wayNodeRefSize != 0 {
		return nil, fmt.Errorf("builder: malformed WayNodeList item at %d", it.Offset)
	}

	refs := make([]model.ID, 0, len(p)/wayNodeRefSize)
	for i := 0; i < len(p); i += wayNodeRefSize {
		refs = append(refs, model.ID(getInt64(p[i:i+wayNodeRefSize])))
	}

	return refs, nil
}
