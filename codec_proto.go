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
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type protoMessageCodec[T proto.Message] struct {
	newMessage func() T
	name       string
}

// ProtoMessage decodes bodies with the protobuf JSON mapping. It lets a
// method reuse message types generated from .proto files as request or
// response bodies. Unknown fields are rejected.
//
//	verdad.ProtoMessage(func() *structpb.Struct { return &structpb.Struct{} })
func ProtoMessage[T proto.Message](newMessage func() T) Codec[T] {
	return &protoMessageCodec[T]{
		newMessage: newMessage,
		name:       string(newMessage().ProtoReflect().Descriptor().FullName()),
	}
}

func (c *protoMessageCodec[T]) Name() string { return c.name }

func (c *protoMessageCodec[T]) Is(value any) bool {
	_, ok := value.(T)
	return ok
}

func (c *protoMessageCodec[T]) Validate(input any, context Context) (T, Errors) {
	var zero T
	data, err := json.Marshal(input)
	if err != nil {
		return zero, failuref(input, context, "not JSON: %v", err)
	}
	message := c.newMessage()
	if err := protojson.Unmarshal(data, message); err != nil {
		return zero, failuref(input, context, "invalid %s: %v", c.name, err)
	}
	return message, nil
}

func (c *protoMessageCodec[T]) Encode(value T) any {
	data, err := protojson.Marshal(value)
	if err != nil {
		return nil
	}
	var wire any
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil
	}
	return wire
}
