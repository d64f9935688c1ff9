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
	"golang.org/x/sys/unix"
)

// DeviceOps is the capability a character device plugs into a Device node.
// Injected rather than subclassed (§9 design note: "polymorphic inodes"):
// a Device is a single concrete type whose byte-level behavior comes from
// whichever DeviceOps it was built with, so adding a new device (null,
// zero, random, console, ...) never touches this package.
type DeviceOps interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Device is a character special file (§3, §4.3). Devices have no seekable
// offset and no content to truncate: Lseek and Ftruncate return ESPIPE and
// EINVAL, same as the device's own lseek/ftruncate overrides in the
// reference driver. QFS.LSeek and QFS.FTruncate do not call them; they
// refuse a device handle themselves with the same errnos.
type Device struct {
	meta Meta
	ops  DeviceOps
}

// NewDevice creates a character device backed by ops.
func NewDevice(ops DeviceOps, clock timeutil.Clock) *Device {
	d := &Device{ops: ops}
	initMeta(&d.meta, quasiModeChr|0o666, clock, d.checkInvariants)
	d.meta.nlink = 1
	return d
}

func (d *Device) Meta() *Meta { return &d.meta }

func (d *Device) checkInvariants() {
	if d.ops == nil {
		panic("Device: ops must not be nil")
	}
}

// Read delegates to the device's DeviceOps.
func (d *Device) Read(p []byte) (int, error) {
	return d.ops.Read(p)
}

// Write delegates to the device's DeviceOps.
func (d *Device) Write(p []byte) (int, error) {
	n, err := d.ops.Write(p)
	if err == nil {
		d.meta.lock()
		d.meta.touchModify()
		d.meta.unlock()
	}
	return n, err
}

// Lseek is never meaningful on a device: there is no offset to seek (§4.4.4).
// Returns ESPIPE, the same errno QFS.LSeek gives for a device handle.
func (d *Device) Lseek() error {
	return unix.ESPIPE
}

// Ftruncate is never meaningful on a device: there is no content to resize.
func (d *Device) Ftruncate() error {
	return unix.EINVAL
}
