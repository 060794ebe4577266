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

import "fmt"

// ErrorKind classifies a BufferError the way libosmium's buffer exception
// hierarchy does, without needing a hierarchy of Go error types.
type ErrorKind int

const (
	// BufferFull means reserve_space could not satisfy a request under
	// the buffer's configured GrowMode.
	BufferFull ErrorKind = iota

	// LogicError means the caller violated an invariant: committing
	// while a Builder is open, or closing builders out of order.
	LogicError

	// InvalidArgument means an offset or size argument was out of range.
	InvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case BufferFull:
		return "buffer full"
	case LogicError:
		return "logic error"
	case InvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// BufferError reports a failed Buffer operation.
type BufferError struct {
	Kind  ErrorKind
	Cause string
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("memory: %s: %s", e.Kind, e.Cause)
}

func newError(kind ErrorKind, cause string) *BufferError {
	return &BufferError{Kind: kind, Cause: cause}
}
