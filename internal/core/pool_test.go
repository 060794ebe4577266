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

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPooledBuffer_ReadFromAndNext(t *testing.T) {
	p := NewPooledBuffer()
	defer p.Close()

	n, err := p.ReadFrom(strings.NewReader("hello world"))
	assert.NoError(t, err)
	assert.EqualValues(t, 11, n)

	assert.Equal(t, []byte("hello"), p.Next(5))
	assert.Equal(t, 6, p.Len())
}

func TestPooledBuffer_ResetAndReuse(t *testing.T) {
	p := NewPooledBuffer()
	_, _ = p.Write([]byte("abc"))
	p.Close()

	p2 := NewPooledBuffer()
	defer p2.Close()
	assert.Equal(t, 0, p2.Len())
}
