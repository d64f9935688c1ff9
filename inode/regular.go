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

package inode

import (
	"github.com/jacobsa/timeutil"
)

// RegularFile holds a contiguous in-memory byte buffer whose length is
// always the inode's reported size (§3).
type RegularFile struct {
	meta     Meta
	data     []byte
	mirrored bool
}

// NewRegularFile creates a regular file with the default mode (§6.3).
func NewRegularFile(clock timeutil.Clock) *RegularFile {
	f := &RegularFile{}
	initMeta(&f.meta, quasiModeReg|0o755, clock, f.checkInvariants)
	return f
}

func (f *RegularFile) Meta() *Meta { return &f.meta }

// checkInvariants: size must always equal len(data). Only meaningful while
// the file isn't host-mirrored — a host-mirrored file's size is tracked by
// Mock* below without data ever being populated, so this would otherwise
// panic on the very first mirrored write. The mirrored flag guards that case.
func (f *RegularFile) checkInvariants() {
	if f.mirrored {
		return
	}
	if f.meta.size != int64(len(f.data)) {
		panic("RegularFile: size does not match len(data)")
	}
}

// SetMirrored marks this file's bytes as living on a host filesystem.
// Read, Write and Truncate below do not check the flag; QFS routes a
// mirrored file to the Mock variants (which only ever touch size) instead.
// QFS's open path sets it when it creates a file under a host-bound
// partition.
func (f *RegularFile) SetMirrored(v bool) {
	f.meta.lock()
	defer f.meta.unlock()
	f.mirrored = v
}

func (f *RegularFile) Mirrored() bool {
	f.meta.lock()
	defer f.meta.unlock()
	return f.mirrored
}

// Read copies min(count, size-offset) bytes starting at offset into p,
// returning the number of bytes copied. Reads at or past EOF return 0
// bytes, not an error (§4.4.3).
func (f *RegularFile) Read(p []byte, offset int64) int {
	f.meta.lock()
	defer f.meta.unlock()

	if offset < 0 || offset >= int64(len(f.data)) {
		return 0
	}
	n := copy(p, f.data[offset:])
	return n
}

// Write extends the buffer to max(size, offset+len(p)), zero-filling any
// gap, then copies p into [offset, offset+len(p)) (§4.4.3).
func (f *RegularFile) Write(p []byte, offset int64) int {
	f.meta.lock()
	defer f.meta.unlock()

	newLen := offset + int64(len(p))
	if newLen > int64(len(f.data)) {
		grown := make([]byte, newLen)
		copy(grown, f.data)
		f.data = grown
	}
	n := copy(f.data[offset:], p)
	f.meta.size = int64(len(f.data))
	f.meta.blocks = (f.meta.size + 511) / 512
	f.meta.touchModify()
	return n
}

// Truncate resizes the buffer to length, zero-filling any extension.
func (f *RegularFile) Truncate(length int64) {
	f.meta.lock()
	defer f.meta.unlock()

	if length <= int64(len(f.data)) {
		f.data = f.data[:length]
	} else {
		grown := make([]byte, length)
		copy(grown, f.data)
		f.data = grown
	}
	f.meta.size = length
	f.meta.blocks = (f.meta.size + 511) / 512
	f.meta.touchModify()
}

// MockRead/MockWrite/MockTruncate are used in place of Read/Write/Truncate
// when the owning partition is host-bound: the host adapter already did the
// real I/O against the mirrored file, so these only update metadata.
//
// MockWrite takes the offset the host write landed at so an in-bounds
// overwrite (offset+n <= size) doesn't inflate size as if every mirrored
// write were an append (§4.4.3: size becomes max(size, offset+count)).
func (f *RegularFile) MockWrite(offset int64, n int) {
	f.meta.lock()
	defer f.meta.unlock()
	f.mirrored = true
	sz := offset + int64(n)
	if sz < f.meta.size {
		sz = f.meta.size
	}
	f.meta.size = sz
	f.meta.blocks = (sz + 511) / 512
	f.meta.touchModify()
}

func (f *RegularFile) MockTruncate(length int64) {
	f.meta.lock()
	defer f.meta.unlock()
	f.mirrored = true
	f.meta.size = length
	f.meta.blocks = (length + 511) / 512
	f.meta.touchModify()
}

func (f *RegularFile) MockSetSize(n int64) {
	f.meta.lock()
	defer f.meta.unlock()
	f.mirrored = true
	f.meta.size = n
	f.meta.blocks = (n + 511) / 512
}
