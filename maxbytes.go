// Copyright 2025 The Verdad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package verdad

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// readAll reads a body, failing with an *http.MaxBytesError if it's longer
// than max. A max of zero or less means no limit.
func readAll(body io.Reader, max int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if max <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, &http.MaxBytesError{Limit: max}
	}
	return data, nil
}

// asMaxBytesError describes a read that hit the size limit, or returns nil.
func asMaxBytesError(situation string, err error) error {
	var maxBytesErr *http.MaxBytesError
	if ok := errors.As(err, &maxBytesErr); !ok {
		return nil
	}
	return fmt.Errorf("%s: exceeded %d byte limit: %w", situation, maxBytesErr.Limit, err)
}
