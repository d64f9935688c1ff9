// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package quasifs

import "time"

// Stat is the metadata record returned to callers by Stat/FStat (§6.5).
// uid/gid/rdev are reserved but never populated: this core has no
// principal-based access control (see spec §1 non-goals).
type Stat struct {
	Dev     uint64
	Ino     int64
	Nlink   uint32
	Mode    uint32
	Size    int64
	Blksize int64
	Blocks  int64

	Uid  uint32
	Gid  uint32
	Rdev uint64

	Atim time.Time
	Mtim time.Time
	Ctim time.Time
}

// SeekOrigin selects the base LSeek computes the new cursor position from.
type SeekOrigin uint8

const (
	SeekOriginStart   SeekOrigin = iota // 0, the start of the file
	SeekOriginCurrent                   // the handle's current position
	SeekOriginEnd                       // the file's current size
)

// MountOptions are bit flags controlling how a partition participates in
// the mount graph (§3).
const (
	MountNoopt   = 0
	MountBind    = 0x01
	MountRW      = 0x02 // clear => read-only
	MountExec    = 0x04 // clear => non-executable; advisory
	MountRemount = 0x08 // update options of an already-mounted partition
)
