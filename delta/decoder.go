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

// Package delta implements the single-accumulator delta decoder the o5m
// wire format uses for ids, coordinates, timestamps, changesets, way node
// references and relation member ids: each value on the wire is a signed
// difference from the last decoded value of its kind.
package delta

// Decoder accumulates signed deltas into a running value. The zero
// Decoder starts at 0, matching a freshly reset o5m stream.
type Decoder struct {
	value int64
}

// Update adds d to the accumulator and returns the new value.
func (d *Decoder) Update(delta int64) int64 {
	d.value += delta

	return d.value
}

// Value returns the current accumulated value without changing it.
func (d *Decoder) Value() int64 { return d.value }

// Clear resets the accumulator to 0, as happens on a dataset_type::reset
// record or at the start of a new file.
func (d *Decoder) Clear() { d.value = 0 }
