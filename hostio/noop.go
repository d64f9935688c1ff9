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

package hostio

import (
	"golang.org/x/net/context"
	"golang.org/x/sys/unix"
)

// NoopAdapter answers every call with EINVAL, exactly as HostIO_Base does
// for a partition that was never given a host root. It exists so a QFS
// always holds a non-nil Adapter; the dispatch layer still checks whether
// a partition is host-bound before calling it.
type NoopAdapter struct{}

var _ Adapter = NoopAdapter{}

func (NoopAdapter) Open(context.Context, string, int, uint32) (int, error) { return 0, unix.EINVAL }
func (NoopAdapter) Close(context.Context, int) error                       { return unix.EINVAL }
func (NoopAdapter) Link(context.Context, string, string) error             { return unix.EINVAL }
func (NoopAdapter) LinkSymbolic(context.Context, string, string) error     { return unix.EINVAL }
func (NoopAdapter) Unlink(context.Context, string) error                   { return unix.EINVAL }
func (NoopAdapter) Flush(context.Context, int) error                       { return unix.EINVAL }
func (NoopAdapter) FSync(context.Context, int) error                       { return unix.EINVAL }
func (NoopAdapter) Truncate(context.Context, string, int64) error          { return unix.EINVAL }
func (NoopAdapter) FTruncate(context.Context, int, int64) error            { return unix.EINVAL }
func (NoopAdapter) LSeek(context.Context, int, int64, int) (int64, error)  { return 0, unix.EINVAL }
func (NoopAdapter) Tell(context.Context, int) (int64, error)               { return 0, unix.EINVAL }
func (NoopAdapter) Write(context.Context, int, []byte) (int, error)        { return 0, unix.EINVAL }
func (NoopAdapter) Read(context.Context, int, []byte) (int, error)         { return 0, unix.EINVAL }
func (NoopAdapter) MKDir(context.Context, string, uint32) error            { return unix.EINVAL }
func (NoopAdapter) RMDir(context.Context, string) error                   { return unix.EINVAL }
func (NoopAdapter) Stat(context.Context, string) (Stat, error)             { return Stat{}, unix.EINVAL }
func (NoopAdapter) FStat(context.Context, int) (Stat, error)               { return Stat{}, unix.EINVAL }
func (NoopAdapter) Chmod(context.Context, string, uint32) error            { return unix.EINVAL }
func (NoopAdapter) FChmod(context.Context, int, uint32) error              { return unix.EINVAL }

func (NoopAdapter) PWrite(context.Context, int, []byte, int64) (int, error) {
	return 0, unix.EINVAL
}

func (NoopAdapter) PRead(context.Context, int, []byte, int64) (int, error) {
	return 0, unix.EINVAL
}
