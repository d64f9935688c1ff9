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
	"os"
	"sync"
	"time"

	"github.com/detailyang/go-fallocate"
	"golang.org/x/net/context"
	"golang.org/x/sys/unix"
)

// OSAdapter is a real POSIX-backed Adapter, the host-mirror half of the
// dual-driver dispatch (§4.6): every call here actually touches the host
// filesystem, unlike the virtual driver in the inode package, which only
// ever touches in-memory state.
//
// Open file descriptors are kept in a table keyed by a small int handle
// (mirroring host_io_posix.h's raw fds) so Read/Write/LSeek/etc. can be
// called with the same "int fd" shape the reference driver uses, without
// exposing *os.File to callers.
type OSAdapter struct {
	mu      sync.Mutex
	files   map[int]*os.File
	nextFd  int
}

var _ Adapter = (*OSAdapter)(nil)

// NewOSAdapter creates an adapter with an empty fd table.
func NewOSAdapter() *OSAdapter {
	return &OSAdapter{files: map[int]*os.File{}, nextFd: 3}
}

func (a *OSAdapter) alloc(f *os.File) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	fd := a.nextFd
	a.nextFd++
	a.files[fd] = f
	return fd
}

func (a *OSAdapter) get(fd int) (*os.File, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.files[fd]
	if !ok {
		return nil, unix.EBADF
	}
	return f, nil
}

func (a *OSAdapter) Open(_ context.Context, path string, flags int, mode uint32) (int, error) {
	f, err := os.OpenFile(path, flags, os.FileMode(mode))
	if err != nil {
		return 0, toErrno(err)
	}
	return a.alloc(f), nil
}

func (a *OSAdapter) Close(_ context.Context, fd int) error {
	f, err := a.get(fd)
	if err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.files, fd)
	a.mu.Unlock()
	return toErrno(f.Close())
}

func (a *OSAdapter) Link(_ context.Context, src, dst string) error {
	return toErrno(os.Link(src, dst))
}

func (a *OSAdapter) LinkSymbolic(_ context.Context, src, dst string) error {
	return toErrno(os.Symlink(src, dst))
}

func (a *OSAdapter) Unlink(_ context.Context, path string) error {
	return toErrno(os.Remove(path))
}

func (a *OSAdapter) Flush(_ context.Context, fd int) error {
	f, err := a.get(fd)
	if err != nil {
		return err
	}
	return toErrno(f.Sync())
}

func (a *OSAdapter) FSync(ctx context.Context, fd int) error {
	return a.Flush(ctx, fd)
}

// Truncate resizes the file at path. Growing a file preallocates the new
// blocks with fallocate rather than leaving a sparse hole, so the host
// filesystem's reported block count tracks the mirrored RegularFile's
// reported size the way a local disk-backed file normally would.
func (a *OSAdapter) Truncate(_ context.Context, path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return toErrno(err)
	}
	defer f.Close()
	return truncateWithFallocate(f, size)
}

func (a *OSAdapter) FTruncate(_ context.Context, fd int, size int64) error {
	f, err := a.get(fd)
	if err != nil {
		return err
	}
	return truncateWithFallocate(f, size)
}

func truncateWithFallocate(f *os.File, size int64) error {
	info, err := f.Stat()
	if err != nil {
		return toErrno(err)
	}
	if size > info.Size() {
		if err := fallocate.Fallocate(f, info.Size(), size-info.Size()); err != nil {
			return toErrno(err)
		}
	}
	return toErrno(f.Truncate(size))
}

func (a *OSAdapter) LSeek(_ context.Context, fd int, offset int64, origin int) (int64, error) {
	f, err := a.get(fd)
	if err != nil {
		return 0, err
	}
	n, err := f.Seek(offset, origin)
	return n, toErrno(err)
}

func (a *OSAdapter) Tell(ctx context.Context, fd int) (int64, error) {
	return a.LSeek(ctx, fd, 0, 1) // io.SeekCurrent
}

func (a *OSAdapter) Write(_ context.Context, fd int, buf []byte) (int, error) {
	f, err := a.get(fd)
	if err != nil {
		return 0, err
	}
	n, werr := f.Write(buf)
	return n, toErrno(werr)
}

func (a *OSAdapter) PWrite(_ context.Context, fd int, buf []byte, offset int64) (int, error) {
	f, err := a.get(fd)
	if err != nil {
		return 0, err
	}
	n, werr := f.WriteAt(buf, offset)
	return n, toErrno(werr)
}

func (a *OSAdapter) Read(_ context.Context, fd int, buf []byte) (int, error) {
	f, err := a.get(fd)
	if err != nil {
		return 0, err
	}
	n, rerr := f.Read(buf)
	if rerr != nil && rerr.Error() != "EOF" {
		return n, toErrno(rerr)
	}
	return n, nil
}

func (a *OSAdapter) PRead(_ context.Context, fd int, buf []byte, offset int64) (int, error) {
	f, err := a.get(fd)
	if err != nil {
		return 0, err
	}
	n, rerr := f.ReadAt(buf, offset)
	if rerr != nil && rerr.Error() != "EOF" {
		return n, toErrno(rerr)
	}
	return n, nil
}

func (a *OSAdapter) MKDir(_ context.Context, path string, mode uint32) error {
	return toErrno(os.Mkdir(path, os.FileMode(mode)))
}

func (a *OSAdapter) RMDir(_ context.Context, path string) error {
	return toErrno(os.Remove(path))
}

func (a *OSAdapter) Stat(_ context.Context, path string) (Stat, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Stat{}, toErrno(err)
	}
	return statFromFileInfo(fi), nil
}

func (a *OSAdapter) FStat(_ context.Context, fd int) (Stat, error) {
	f, err := a.get(fd)
	if err != nil {
		return Stat{}, err
	}
	fi, serr := f.Stat()
	if serr != nil {
		return Stat{}, toErrno(serr)
	}
	return statFromFileInfo(fi), nil
}

func (a *OSAdapter) Chmod(_ context.Context, path string, mode uint32) error {
	return toErrno(os.Chmod(path, os.FileMode(mode).Perm()))
}

func (a *OSAdapter) FChmod(_ context.Context, fd int, mode uint32) error {
	f, err := a.get(fd)
	if err != nil {
		return err
	}
	return toErrno(f.Chmod(os.FileMode(mode).Perm()))
}

func statFromFileInfo(fi os.FileInfo) Stat {
	s := Stat{Size: fi.Size(), Mode: uint32(fi.Mode().Perm()), Mtim: fi.ModTime()}
	if sys, ok := fi.Sys().(*unix.Stat_t); ok {
		s.Nlink = uint32(sys.Nlink)
		s.Blksize = int64(sys.Blksize)
		s.Atim = time.Unix(sys.Atim.Sec, sys.Atim.Nsec)
		s.Ctim = time.Unix(sys.Ctim.Sec, sys.Ctim.Nsec)
	}
	return s
}

// toErrno unwraps a *os.PathError/*os.LinkError down to the underlying
// unix.Errno, the same errno space the virtual driver's own errors live
// in, so dispatch can compare or propagate either uniformly.
func toErrno(err error) error {
	if err == nil {
		return nil
	}
	if errno, ok := err.(unix.Errno); ok {
		return errno
	}
	type unwrapper interface{ Unwrap() error }
	for u, ok := err.(unwrapper); ok; u, ok = err.(unwrapper) {
		err = u.Unwrap()
		if errno, ok := err.(unix.Errno); ok {
			return errno
		}
	}
	return unix.EIO
}
