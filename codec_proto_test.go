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

package verdad_test

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/assert"
)

func TestProtoMessage(t *testing.T) {
	t.Parallel()
	codec := verdad.ProtoMessage(func() *structpb.Struct { return &structpb.Struct{} })
	assert.Equal(t, codec.Name(), "google.protobuf.Struct")

	input := map[string]any{"name": "ada", "tags": []any{"a", "b"}, "age": 36.0}
	got, err := verdad.Decode(codec, input)
	assert.Nil(t, err)
	want, err := structpb.NewStruct(input)
	assert.Nil(t, err)
	assert.Equal(t, got, want)
	assert.Equal(t, codec.Encode(got), any(input))
	assert.True(t, codec.Is(want))

	_, err = verdad.Decode(codec, "not an object")
	errs := decodeErrors(t, err)
	assert.Len(t, errs, 1)
	assert.Match(t, errs[0].Error(), `^<root>: invalid google\.protobuf\.Struct`)

	lists := verdad.ProtoMessage(func() *structpb.ListValue { return &structpb.ListValue{} })
	list, err := verdad.Decode(lists, []any{1.0, "two"})
	assert.Nil(t, err)
	assert.Len(t, list.GetValues(), 2)
}
