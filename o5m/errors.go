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

import "fmt"

// O5mError reports a malformed o5m/o5c stream. It is fatal to the
// Decoder instance that raised it: records committed before the failure
// remain valid, but decoding does not resume past a corrupt boundary.
type O5mError struct {
	Cause string
}

func (e *O5mError) Error() string {
	return fmt.Sprintf("o5m: format error: %s", e.Cause)
}

func newFormatError(cause string) *O5mError {
	return &O5mError{Cause: cause}
}
