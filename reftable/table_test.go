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

package reftable_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/o5m/reftable"
)

func TestTable_AddAndGet(t *testing.T) {
	var tbl reftable.Table

	tbl.Add([]byte("first"))
	tbl.Add([]byte("second"))
	tbl.Add([]byte("third"))

	v, err := tbl.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "third", string(v))

	v, err = tbl.Get(3)
	assert.NoError(t, err)
	assert.Equal(t, "first", string(v))
}

func TestTable_GetZeroOrEmptyIsError(t *testing.T) {
	var tbl reftable.Table

	_, err := tbl.Get(0)
	assert.Error(t, err)

	_, err = tbl.Get(1)
	assert.Error(t, err)
}

func TestTable_AddSilentlyDropsOverLength(t *testing.T) {
	var tbl reftable.Table

	tbl.Add([]byte("short"))
	tbl.Add([]byte(strings.Repeat("x", reftable.MaxLength+1)))

	v, err := tbl.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "short", string(v))
}

func TestTable_WrapsAroundRing(t *testing.T) {
	var tbl reftable.Table

	for i := 0; i < reftable.NumEntries+5; i++ {
		tbl.Add([]byte{byte(i % 256)})
	}

	v, err := tbl.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, byte((reftable.NumEntries+4)%256), v[0])

	_, err = tbl.Get(reftable.NumEntries)
	assert.NoError(t, err)
}

func TestTable_Clear(t *testing.T) {
	var tbl reftable.Table

	tbl.Add([]byte("a"))
	tbl.Clear()

	_, err := tbl.Get(1)
	assert.Error(t, err)
}
