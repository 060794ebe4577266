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

import "time"

// Info is the optional metadata block attached to a Node, Way or
// Relation: author and edit time. A record with no info block at all
// carries a nil *Info; a record with a version but no changeset/user
// (the "version-only" o5m encoding, used when the delta-decoded
// timestamp comes out to zero) carries an *Info with Changeset and User
// left zero. Visibility (whether the record was deleted) is carried
// separately, on the entity itself, since o5m signals it by the absence
// of a body rather than as part of the info block.
type Info struct {
	Version   int32
	Timestamp time.Time
	Changeset ID
	UID       UID
	User      string
}
