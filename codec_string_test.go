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
	"math"
	"testing"
	"testing/quick"
	"time"

	"verdad.dev/verdad"
	"verdad.dev/verdad/internal/assert"
)

func TestNumberFromString(t *testing.T) {
	t.Parallel()
	codec := verdad.NumberFromString()
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"3", 3, true},
		{"-1.5e3", -1500, true},
		{"0.25", 0.25, true},
		{"", 0, false},
		{" 3", 0, false},
		{"three", 0, false},
	}
	for _, testcase := range tests {
		testcase := testcase
		t.Run(testcase.input, func(t *testing.T) {
			t.Parallel()
			got, err := verdad.Decode(codec, testcase.input)
			assert.Equal(t, err == nil, testcase.ok)
			assert.Equal(t, got, testcase.want)
		})
	}
	_, err := verdad.Decode(codec, 3.0)
	assert.NotNil(t, err)
	assert.Equal(t, codec.Encode(2.5), any("2.5"))

	roundTrips := func(f float64) bool {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
		got, err := verdad.Decode(codec, codec.Encode(f))
		return err == nil && got == f
	}
	assert.Nil(t, quick.Check(roundTrips, nil))
}

func TestIntAndBoolFromString(t *testing.T) {
	t.Parallel()
	n, err := verdad.Decode(verdad.IntFromString(), "-42")
	assert.Nil(t, err)
	assert.Equal(t, n, -42)
	_, err = verdad.Decode(verdad.IntFromString(), "4.2")
	assert.NotNil(t, err)

	b, err := verdad.Decode(verdad.BoolFromString(), "false")
	assert.Nil(t, err)
	assert.False(t, b)
	_, err = verdad.Decode(verdad.BoolFromString(), "TRUE")
	assert.NotNil(t, err)

	roundTrips := func(n int) bool {
		codec := verdad.IntFromString()
		got, err := verdad.Decode(codec, codec.Encode(n))
		return err == nil && got == n
	}
	assert.Nil(t, quick.Check(roundTrips, nil))
}

func TestDateTimeFromString(t *testing.T) {
	t.Parallel()
	codec := verdad.DateTimeFromString()
	got, err := verdad.Decode(codec, "2021-03-04T05:06:07.5Z")
	assert.Nil(t, err)
	assert.True(t, got.Equal(time.Date(2021, 3, 4, 5, 6, 7, 500_000_000, time.UTC)))
	assert.Equal(t, codec.Encode(got), any("2021-03-04T05:06:07.5Z"))
	_, err = verdad.Decode(codec, "2021-03-04")
	assert.NotNil(t, err)
}

func TestLiteralFromString(t *testing.T) {
	t.Parallel()
	version := verdad.IntLiteralFromString(2)
	assert.Equal(t, version.Name(), "IntFromString<2>")
	got, err := verdad.Decode(version, "2")
	assert.Nil(t, err)
	assert.Equal(t, got, 2)
	_, err = verdad.Decode(version, "3")
	assert.NotNil(t, err)
	assert.True(t, version.Is(2))
	assert.False(t, version.Is(3))
	assert.Equal(t, version.Encode(2), any("2"))

	half := verdad.NumberLiteralFromString(0.5)
	_, err = verdad.Decode(half, "5e-1")
	assert.Nil(t, err)

	yes := verdad.BoolLiteralFromString(true)
	_, err = verdad.Decode(yes, "false")
	assert.NotNil(t, err)
}

func TestCommaSeparated(t *testing.T) {
	t.Parallel()
	codec := verdad.CommaSeparated(verdad.IntFromString())
	got, err := verdad.Decode(codec, "1,2,3")
	assert.Nil(t, err)
	assert.Equal(t, got, []int{1, 2, 3})

	got, err = verdad.Decode(codec, "")
	assert.Nil(t, err)
	assert.Equal(t, got, []int{})

	_, err = verdad.Decode(codec, "1,x,3,y")
	assert.Equal(t, paths(decodeErrors(t, err)), []string{"1", "3"})

	assert.Equal(t, codec.Encode([]int{4, 5}), any("4,5"))
	assert.Equal(t, codec.Name(), "CommaSeparated<IntFromString>")
}

type color string

func TestHandleUnexpected(t *testing.T) {
	t.Parallel()
	codec := verdad.HandleUnexpected(verdad.Enum("Color", color("red"), color("blue")))
	got, err := verdad.Decode(codec, "red")
	assert.Nil(t, err)
	assert.Equal(t, got, verdad.Unexpected[color]{Expected: true, Value: "red", Raw: "red"})

	got, err = verdad.Decode(codec, "mauve")
	assert.Nil(t, err)
	assert.Equal(t, got, verdad.Unexpected[color]{Raw: "mauve"})
	assert.Equal(t, codec.Encode(got), any("mauve"))

	_, err = verdad.Decode(codec, 1.0)
	assert.NotNil(t, err)
	assert.True(t, codec.Is(verdad.Unexpected[color]{Expected: true, Value: "blue"}))
	assert.False(t, codec.Is(verdad.Unexpected[color]{Expected: true, Value: "mauve"}))
}
