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
)

// TagListBuilder accumulates a node/way/relation's tags as NUL-terminated
// key/value pairs, back to back, inside its own nested item.
type TagListBuilder struct {
	*listBuilder
}

// Tags opens a nested TagListBuilder within the still-open parent. The
// caller must Close it before closing the parent.
func Tags(buf *memory.Buffer) (*TagListBuilder, error) {
	lb, err := openList(buf, memory.TypeTagList)
	if err != nil {
		return nil, fmt.Errorf("builder: new tag list: %w", err)
	}

	return &TagListBuilder{listBuilder: lb}, nil
}

// AddTag appends one key/value pair. Neither key nor value may contain
// a NUL byte.
func (tl *TagListBuilder) AddTag(key, value string) error {
	if bytes.IndexByte([]byte(key), 0) >= 0 || bytes.IndexByte([]byte(value), 0) >= 0 {
		return fmt.Errorf("builder: tag key/value must not contain NUL")
	}

	enc := make([]byte, 0, len(key)+len(value)+2)
	enc = append(enc, key...)
	enc = append(enc, 0)
	enc = append(enc, value...)
	enc = append(enc, 0)

	if err := tl.appendData(enc); err != nil {
		return fmt.Errorf("builder: add tag: %w", err)
	}

	return nil
}

// ReadTags decodes a TagList item's payload into a map.
func ReadTags(buf *memory.Buffer, it memory.Item) (map[string]string, error) {
	if it.Type != memory.TypeTagList {
		return nil, fmt.Errorf("builder: item at %d is not TagList", it.Offset)
	}

	p, err := listPayload(buf, it)
	if err != nil {
		return nil, err
	}

	tags := make(map[string]string)

	for len(p) > 0 {
		keyEnd := bytes.IndexByte(p, 0)
		if keyEnd < 0 {
			return nil, fmt.Errorf("builder: truncated tag key in item at %d", it.Offset)
		}

		key := string(p[:keyEnd])
		p = p[keyEnd+1:]

		valEnd := bytes.IndexByte(p, 0)
		if valEnd < 0 {
			return nil, fmt.Errorf("builder: truncated tag value in item at %d", it.Offset)
		}

		tags[key] = string(p[:valEnd])
		p = p[valEnd+1:]
	}

	return tags, nil
}
