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

package cli

import (
	"errors"
	"io"
)

// chunkSize is how much a Source pulls from the underlying reader per
// GetInput call.
const chunkSize = 64 * 1024

// readerSource adapts an io.Reader to o5m.Source, reading fixed-size
// chunks until the reader reports io.EOF.
type readerSource struct {
	r    io.Reader
	buf  []byte
	done bool
}

// NewSource wraps r as an o5m.Source.
func NewSource(r io.Reader) *readerSource {
	return &readerSource{r: r, buf: make([]byte, chunkSize)}
}

func (s *readerSource) InputDone() bool { return s.done }

func (s *readerSource) GetInput() ([]byte, error) {
	if s.done {
		return nil, nil
	}

	n, err := s.r.Read(s.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
		} else {
			return nil, err
		}
	}

	if n == 0 {
		s.done = true

		return nil, nil
	}

	return s.buf[:n], nil
}
