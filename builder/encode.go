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
	"encoding/binary"
	"time"

	"m4o.io/o5m/model"
)

// infoSize is the encoded width of model.Info's fixed fields (the User
// string, if any, follows as a separate nested UserName item).
const infoSize = 4 + 8 + 8 + 4 // Version, Timestamp, Changeset, UID

func putInfo(b []byte, info *model.Info) {
	if info == nil {
		for i := range b[:infoSize] {
			b[i] = 0
		}

		return
	}

	binary.LittleEndian.PutUint32(b[0:4], uint32(info.Version))
	binary.LittleEndian.PutUint64(b[4:12], uint64(info.Timestamp.Unix()))
	binary.LittleEndian.PutUint64(b[12:20], uint64(info.Changeset))
	binary.LittleEndian.PutUint32(b[20:24], uint32(info.UID))
}

func getInfo(b []byte, hasInfo bool) *model.Info {
	if !hasInfo {
		return nil
	}

	version := int32(binary.LittleEndian.Uint32(b[0:4]))
	ts := int64(binary.LittleEndian.Uint64(b[4:12]))
	changeset := model.ID(binary.LittleEndian.Uint64(b[12:20]))
	uid := model.UID(binary.LittleEndian.Uint32(b[20:24]))

	return &model.Info{
		Version:   version,
		Timestamp: time.Unix(ts, 0).UTC(),
		Changeset: changeset,
		UID:       uid,
	}
}

func putInt64(b []byte, v int64)  { binary.LittleEndian.PutUint64(b, uint64(v)) }
func getInt64(b []byte) int64     { return int64(binary.LittleEndian.Uint64(b)) }
func putInt32(b []byte, v int32)  { binary.LittleEndian.PutUint32(b, uint32(v)) }
func getInt32(b []byte) int32     { return int32(binary.LittleEndian.Uint32(b)) }
