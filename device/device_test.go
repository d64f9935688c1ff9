// Copyright 2015 Google Inc. All Rights Reserved.
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

package device_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/jacobsa/ogletest"

	"github.com/marecl/quasifs/device"
)

func TestDevice(t *testing.T) { RunTests(t) }

type DeviceTest struct{}

func init() { RegisterTestSuite(&DeviceTest{}) }

func (t *DeviceTest) SetUp(*TestInfo) {}

func (t *DeviceTest) NullDiscardsWritesAndReadsEOF() {
	var n device.Null

	written, err := n.Write([]byte("anything"))
	AssertEq(nil, err)
	ExpectEq(8, written)

	buf := make([]byte, 4)
	read, err := n.Read(buf)
	AssertEq(nil, err)
	ExpectEq(0, read)
}

func (t *DeviceTest) ZeroReadsEndlessZeroBytes() {
	var z device.Zero

	buf := []byte{1, 2, 3, 4}
	n, err := z.Read(buf)
	AssertEq(nil, err)
	ExpectEq(4, n)
	for _, b := range buf {
		ExpectEq(byte(0), b)
	}
}

func (t *DeviceTest) RandomReadsRequestedLength() {
	var r device.Random

	buf := make([]byte, 32)
	n, err := r.Read(buf)
	AssertEq(nil, err)
	ExpectEq(32, n)
}

func (t *DeviceTest) ConsoleWritesToOutAndReadsFromIn() {
	var out bytes.Buffer
	in := strings.NewReader("hello")
	c := device.Console{Out: &out, In: in}

	n, err := c.Write([]byte("hi"))
	AssertEq(nil, err)
	ExpectEq(2, n)
	ExpectEq("hi", out.String())

	buf := make([]byte, 5)
	n, err = c.Read(buf)
	AssertEq(nil, err)
	ExpectEq(5, n)
	ExpectEq("hello", string(buf))
}

func (t *DeviceTest) ConsoleWithNilStreamsIsInert() {
	var c device.Console

	n, err := c.Write([]byte("x"))
	AssertEq(nil, err)
	ExpectEq(1, n)

	buf := make([]byte, 1)
	n, err = c.Read(buf)
	AssertEq(nil, err)
	ExpectEq(0, n)
}
