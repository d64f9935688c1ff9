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

// Package device holds a handful of sample character devices implementing
// inode.DeviceOps -- the same small set original_source wires up at
// startup (device_null.h, device_stdout.h, dev/dev_std.cpp): Null, Zero,
// Random and a host-io-backed Console. None of this is core to QuasiFS;
// the core only ever depends on the DeviceOps capability interface, not
// on any device built here.
package device

import (
	"crypto/rand"
	"io"
)

// Null discards every write and always reads EOF, the same contract as
// original_source's NullDevice::read/write.
type Null struct{}

func (Null) Read(p []byte) (int, error)  { return 0, nil }
func (Null) Write(p []byte) (int, error) { return len(p), nil }

// Zero ignores writes (like Null) but reads back an endless stream of
// zero bytes rather than EOF.
type Zero struct{}

func (Zero) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
func (Zero) Write(p []byte) (int, error) { return len(p), nil }

// Random reads cryptographically random bytes and discards writes.
type Random struct{}

func (Random) Read(p []byte) (int, error)  { return rand.Read(p) }
func (Random) Write(p []byte) (int, error) { return len(p), nil }

// Console writes to out and reads from in, the Go equivalent of
// original_source's DevStdout/DevStdin (dev/dev_std.cpp): stdout accepts
// writes and refuses reads, stdin is the reverse.
type Console struct {
	Out io.Writer
	In  io.Reader
}

func (c Console) Write(p []byte) (int, error) {
	if c.Out == nil {
		return len(p), nil
	}
	return c.Out.Write(p)
}

func (c Console) Read(p []byte) (int, error) {
	if c.In == nil {
		return 0, nil
	}
	n, err := c.In.Read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}
