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

package builder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"m4o.io/o5m/builder"
	"m4o.io/o5m/memory"
	"m4o.io/o5m/model"
)

func TestNodeBuilder_RoundTrip(t *testing.T) {
	buf := memory.NewBuffer(256, memory.GrowRealloc)

	info := &model.Info{
		Version:   3,
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Changeset: 42,
		UID:       7,
		User:      "alice",
	}

	nb, err := builder.NewNode(buf, 100, 7.5, 51.25, true, info)
	assert.NoError(t, err)

	tags, err := nb.Tags()
	assert.NoError(t, err)
	assert.NoError(t, tags.AddTag("amenity", "cafe"))
	assert.NoError(t, tags.AddTag("name", "Blue Bottle"))
	assert.NoError(t, tags.Close())

	assert.NoError(t, nb.Close())
	_, err = buf.Commit()
	assert.NoError(t, err)

	it, ok := buf.Iterator().Next()
	assert.True(t, ok)
	assert.Equal(t, memory.TypeNode, it.Type)

	node, err := builder.ReadNode(buf, it)
	assert.NoError(t, err)
	assert.EqualValues(t, 100, node.ID)
	assert.True(t, node.Visible)
	assert.InDelta(t, 7.5, float64(node.Lon), 1e-6)
	assert.InDelta(t, 51.25, float64(node.Lat), 1e-6)
	assert.Equal(t, "alice", node.Info.User)
	assert.EqualValues(t, 3, node.Info.Version)
	assert.Equal(t, map[string]string{"amenity": "cafe", "name": "Blue Bottle"}, node.Tags)
}

func TestWayBuilder_RoundTrip(t *testing.T) {
	buf := memory.NewBuffer(256, memory.GrowRealloc)

	wb, err := builder.NewWay(buf, 200, true, nil)
	assert.NoError(t, err)

	nodes, err := wb.Nodes()
	assert.NoError(t, err)
	assert.NoError(t, nodes.AddNodeRef(1))
	assert.NoError(t, nodes.AddNodeRef(2))
	assert.NoError(t, nodes.AddNodeRef(3))
	assert.NoError(t, nodes.Close())

	assert.NoError(t, wb.Close())
	_, err = buf.Commit()
	assert.NoError(t, err)

	it, ok := buf.Iterator().Next()
	assert.True(t, ok)

	way, err := builder.ReadWay(buf, it)
	assert.NoError(t, err)
	assert.EqualValues(t, 200, way.ID)
	assert.Equal(t, []model.ID{1, 2, 3}, way.NodeIDs)
	assert.Nil(t, way.Tags)
}

func TestRelationBuilder_RoundTrip(t *testing.T) {
	buf := memory.NewBuffer(256, memory.GrowRealloc)

	rb, err := builder.NewRelation(buf, 300, true, nil)
	assert.NoError(t, err)

	members, err := rb.Members()
	assert.NoError(t, err)
	assert.NoError(t, members.AddMember(model.NodeMember, 1, "from"))
	assert.NoError(t, members.AddMember(model.WayMember, 2, ""))
	assert.NoError(t, members.Close())

	assert.NoError(t, rb.Close())
	_, err = buf.Commit()
	assert.NoError(t, err)

	it, ok := buf.Iterator().Next()
	assert.True(t, ok)

	rel, err := builder.ReadRelation(buf, it)
	assert.NoError(t, err)
	assert.Len(t, rel.Members, 2)
	assert.Equal(t, model.NodeMember, rel.Members[0].Type)
	assert.Equal(t, "from", rel.Members[0].Role)
	assert.Equal(t, model.WayMember, rel.Members[1].Type)
	assert.Equal(t, "", rel.Members[1].Role)
}

func TestNodeBuilder_ClosingOutOfOrderIsLogicError(t *testing.T) {
	buf := memory.NewBuffer(256, memory.GrowRealloc)

	nb, err := builder.NewNode(buf, 1, 0, 0, true, nil)
	assert.NoError(t, err)

	_, err = nb.Tags()
	assert.NoError(t, err)

	// Closing the outer builder while the tag list is still open must fail.
	err = nb.Close()
	assert.Error(t, err)
}

func TestMultipleNodesInOneBuffer(t *testing.T) {
	buf := memory.NewBuffer(256, memory.GrowRealloc)

	for i := model.ID(1); i <= 3; i++ {
		nb, err := builder.NewNode(buf, i, model.Degrees(i), model.Degrees(i), true, nil)
		assert.NoError(t, err)
		assert.NoError(t, nb.Close())
		_, err = buf.Commit()
		assert.NoError(t, err)
	}

	var ids []model.ID

	it := buf.Iterator()
	for {
		item, ok := it.Next()
		if !ok {
			break
		}

		n, err := builder.ReadNode(buf, item)
		assert.NoError(t, err)
		ids = append(ids, n.ID)
	}

	assert.Equal(t, []model.ID{1, 2, 3}, ids)
}
