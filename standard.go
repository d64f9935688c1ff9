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

package quasifs

import (
	"os"

	"golang.org/x/net/context"

	"github.com/marecl/quasifs/device"
	"github.com/marecl/quasifs/inode"
)

// NewStandard builds a QFS the same way original_source's main.cpp wires
// one up at startup: an empty root plus a populated /dev holding null,
// zero, random and a host-console-backed device, none of which this
// core's dispatch logic knows anything special about -- they're ordinary
// Device inodes built from the device package's DeviceOps.
func NewStandard() *QFS {
	q := New()
	ctx := context.Background()

	if err := q.MKDir(ctx, "/dev", DefaultDirMode); err != nil {
		panic("quasifs: NewStandard: mkdir /dev: " + err.Error())
	}

	devDir, ok := q.Root().Lookup("dev").(*inode.Directory)
	if !ok {
		panic("quasifs: NewStandard: /dev did not resolve to a directory")
	}

	q.addDevice(devDir, "null", device.Null{})
	q.addDevice(devDir, "zero", device.Zero{})
	q.addDevice(devDir, "random", device.Random{})
	q.addDevice(devDir, "urandom", device.Random{})
	q.addDevice(devDir, "console", device.Console{Out: os.Stdout, In: os.Stdin})

	return q
}

func (q *QFS) addDevice(dir *inode.Directory, name string, ops inode.DeviceOps) {
	dev := inode.NewDevice(ops, q.clock)
	if err := q.rootfs.TouchNode(dir, name, dev); err != nil {
		panic("quasifs: NewStandard: add /dev/" + name + ": " + err.Error())
	}
}
