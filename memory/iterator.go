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

package memory

// ItemIterator walks the committed items of a Buffer in offset order,
// optionally restricted to a single ItemType.
type ItemIterator struct {
	buf       *Buffer
	offset    int
	end       int
	filter    ItemType
	hasFilter bool
}

// Iterator walks every committed item.
func (b *Buffer) Iterator() *ItemIterator {
	return &ItemIterator{buf: b, offset: 0, end: b.committed}
}

// TypedIterator walks only committed items of the given type.
func (b *Buffer) TypedIterator(t ItemType) *ItemIterator {
	return &ItemIterator{buf: b, offset: 0, end: b.committed, filter: t, hasFilter: true}
}

// GetIterator resumes iteration at a known, aligned offset.
func (b *Buffer) GetIterator(offset int) *ItemIterator {
	return &ItemIterator{buf: b, offset: offset, end: b.committed}
}

// Next returns the next matching item, or false once iteration is
// exhausted.
func (it *ItemIterator) Next() (Item, bool) {
	for it.offset < it.end {
		item, err := it.buf.Item(it.offset)
		if err != nil {
			return Item{}, false
		}

		it.offset += int(item.Size)

		if it.hasFilter && item.Type != it.filter {
			continue
		}

		return item, true
	}

	return Item{}, false
}

// Offset reports the iterator's current read position, useful for
// resuming with GetIterator.
func (it *ItemIterator) Offset() int { return it.offset }
