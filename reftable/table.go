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

// Package reftable implements the o5m back-reference ring: a fixed
// number of recently-seen strings, looked up by how many entries back
// they were added.
package reftable

import "fmt"

const (
	// NumEntries is the number of slots in the ring.
	NumEntries = 15000

	// EntrySize is the nominal slot width MaxLength is derived from.
	// Entries are stored as exact-length copies, not padded to it.
	EntrySize = 256

	// MaxLength is the longest string the table will hold; o5m
	// writers fall back to inlining anything longer, and a decoder
	// silently drops an over-length Add instead of erroring.
	MaxLength = EntrySize - 2 - 2
)

// Table is the fixed-size ring buffer of recently-seen strings used to
// resolve o5m's back-reference indices. Storage is allocated lazily on
// the first Add, so an idle Decoder carries no ring memory.
type Table struct {
	entries [][]byte // lazily grown to NumEntries on first Add
	current int
}

// Clear resets the write cursor and empties every slot, so each index
// fails to resolve until a new string is added there. The ring itself
// stays allocated.
func (t *Table) Clear() {
	t.current = 0
	for i := range t.entries {
		t.entries[i] = nil
	}
}

// Add inserts s at the current cursor and advances it. Strings longer
// than MaxLength are silently dropped, matching the writer-side
// assumption that such strings are never back-referenced.
func (t *Table) Add(s []byte) {
	if len(s) > MaxLength {
		return
	}

	if t.entries == nil {
		t.entries = make([][]byte, NumEntries)
	}

	cp := make([]byte, len(s))
	copy(cp, s)

	t.entries[t.current] = cp
	t.current = (t.current + 1) % NumEntries
}

// Get resolves a 1-based back-reference: index 1 is the most recently
// added string, index 2 the one before that, and so on.
func (t *Table) Get(index uint64) ([]byte, error) {
	if t.entries == nil || index == 0 || index > NumEntries {
		return nil, fmt.Errorf("reftable: invalid reference index %d", index)
	}

	entry := (t.current + NumEntries - int(index)) % NumEntries

	s := t.entries[entry]
	if s == nil {
		return nil, fmt.Errorf("reftable: reference index %d is empty", index)
	}

	return s, nil
}
