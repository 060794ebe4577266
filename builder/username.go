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

// UserNameBuilder writes the author of an edit as its own item, rather
// than inlining it into the Node/Way/Relation's fixed fields the way
// libosmium does — every record in this model is self-describing and
// independently skippable, including the username.
type UserNameBuilder struct {
	*Builder
}

// NewUserName writes a UserName item holding the uid plus the name
// string. The returned builder is still open; the caller must Close it
// before adding anything else to the parent item.
func NewUserName(buf *memory.Buffer, uid model.UID, name string) (*UserNameBuilder, error) {
	fixed := make([]byte, 4+len(name))
	putInt32(fixed[0:4], int32(uid))
	copy(fixed[4:], name)

	b, err := open(buf, memory.TypeUserName, fixed)
	if err != nil {
		return nil, fmt.Errorf("builder: new user name: %w", err)
	}

	return &UserNameBuilder{Builder: b}, nil
}

// UserName is the decoded view of a UserName item.
type UserName struct {
	UID  model.UID
	Name string
}

// ReadUserName decodes a UserName item's payload.
func ReadUserName(buf *memory.Buffer, it memory.Item) (UserName, error) {
	if it.Type != memory.TypeUserName {
		return UserName{}, fmt.Errorf("builder: item at %d is not UserName", it.Offset)
	}

	p := buf.Payload(it)
	if len(p) < 4 {
		return UserName{}, fmt.Errorf("builder: truncated UserName item at %d", it.Offset)
	}

	// The name is followed by the NUL padding Close added to reach
	// memory.Align.
	name := p[4:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return UserName{
		UID:  model.UID(getInt32(p[0:4])),
		Name: string(name),
	}, nil
}
