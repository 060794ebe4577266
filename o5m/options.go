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

package o5m

import "m4o.io/o5m/memory"

// DefaultBufferCapacity is the size a fresh output Buffer starts at, and
// the high-water mark Run rotates a buffer out at.
const DefaultBufferCapacity = 1 << 20 // 1 MiB

// decoderOptions holds the configuration a Decoder is built with.
type decoderOptions struct {
	readTypes      EntityMask
	bufferCapacity int
	growMode       memory.GrowMode
}

func defaultDecoderConfig() decoderOptions {
	return decoderOptions{
		readTypes:      MaskAll,
		bufferCapacity: DefaultBufferCapacity,
		growMode:       memory.GrowChain,
	}
}

// DecoderOption configures a Decoder at construction.
type DecoderOption func(*decoderOptions)

// WithReadTypes restricts which entity types are decoded at all.
// Excluded types are skipped outright, not decoded and discarded, so
// their delta state (id, and for relations their per-member-type id)
// falls out of sync with the stream; this matches the reference o5m
// decoder, which has the same limitation.
func WithReadTypes(mask EntityMask) DecoderOption {
	return func(o *decoderOptions) { o.readTypes = mask }
}

// WithBufferCapacity sets the starting capacity of each output Buffer
// and the threshold Run rotates a filled one out at.
func WithBufferCapacity(capacity int) DecoderOption {
	return func(o *decoderOptions) { o.bufferCapacity = capacity }
}

// WithGrowMode sets the GrowMode of the Buffers Run produces.
func WithGrowMode(mode memory.GrowMode) DecoderOption {
	return func(o *decoderOptions) { o.growMode = mode }
}
