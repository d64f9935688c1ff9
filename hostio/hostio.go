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

// Package hostio is the seam between a host-bound partition and the real
// operating system (§4.6). Every call a dispatched operation makes against
// a mirrored file goes through an Adapter; the virtual driver in the
// inode package never touches the OS directly.
package hostio

import (
	"time"

	"golang.org/x/net/context"
)

// Stat mirrors the subset of host filesystem metadata QuasiFS cares about
// when reconciling a host call's result against the virtual driver's
// (§4.4.8: mode, size, blksize, blocks and the three timestamps all defer
// to the host when a partition is host-bound).
type Stat struct {
	Size    int64
	Mode    uint32
	Nlink   uint32
	Blksize int64

	Atim time.Time
	Mtim time.Time
	Ctim time.Time
}

// Adapter is implemented by anything that can perform real filesystem
// I/O on behalf of a host-bound partition. Every method takes a Context
// first, following this corpus's convention for blocking operations that
// cross into the kernel.
//
// Every Adapter method list here is grounded 1:1 on HostIO_Base's virtual
// table: the reference driver stubs every one of these out to a single
// "not implemented" errno, and this interface exists so NoopAdapter can
// do the same while OSAdapter gives each a real implementation.
type Adapter interface {
	Open(ctx context.Context, path string, flags int, mode uint32) (fd int, err error)
	Close(ctx context.Context, fd int) error

	Link(ctx context.Context, src, dst string) error
	LinkSymbolic(ctx context.Context, src, dst string) error
	Unlink(ctx context.Context, path string) error

	Flush(ctx context.Context, fd int) error
	FSync(ctx context.Context, fd int) error

	Truncate(ctx context.Context, path string, size int64) error
	FTruncate(ctx context.Context, fd int, size int64) error

	LSeek(ctx context.Context, fd int, offset int64, origin int) (int64, error)
	Tell(ctx context.Context, fd int) (int64, error)

	Write(ctx context.Context, fd int, buf []byte) (int, error)
	PWrite(ctx context.Context, fd int, buf []byte, offset int64) (int, error)
	Read(ctx context.Context, fd int, buf []byte) (int, error)
	PRead(ctx context.Context, fd int, buf []byte, offset int64) (int, error)

	MKDir(ctx context.Context, path string, mode uint32) error
	RMDir(ctx context.Context, path string) error

	Stat(ctx context.Context, path string) (Stat, error)
	FStat(ctx context.Context, fd int) (Stat, error)

	Chmod(ctx context.Context, path string, mode uint32) error
	FChmod(ctx context.Context, fd int, mode uint32) error
}
