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

package model

import (
	"time"
)

// Header carries the prelude of an o5m/o5c file: the bounding boxes and
// timestamp markers a decoder accumulates before (or between) entity
// records, plus whether the file is an o5c change file.
type Header struct {
	Boxes                     []BoundingBox `json:"boxes,omitempty"`
	Timestamp                 time.Time     `json:"timestamp,omitempty"`
	HasMultipleObjectVersions bool          `json:"has_multiple_object_versions,omitempty"`
}

// AddBox appends a bounding box encountered in a dataset_type::bounding_box
// record. A file may carry more than one; they are kept in stream order.
func (h *Header) AddBox(b BoundingBox) {
	h.Boxes = append(h.Boxes, b)
}
