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
	"github.com/jacobsa/reqtrace"
	"golang.org/x/net/context"

	"github.com/marecl/quasifs/hostio"
	"github.com/marecl/quasifs/inode"
)

func statFromNode(node inode.Node) Stat {
	m := node.Meta()
	atim, mtim, ctim := m.Times()
	size := m.Size()
	if dir, ok := node.(*inode.Directory); ok {
		size = dir.Size()
	}
	return Stat{
		Dev:     m.Dev(),
		Ino:     m.Ino(),
		Nlink:   m.Nlink(),
		Mode:    m.Mode(),
		Size:    size,
		Blksize: m.Blksize(),
		Blocks:  m.Blocks(),
		Atim:    atim,
		Mtim:    mtim,
		Ctim:    ctim,
	}
}

// Stat resolves path and reports its inode's metadata (§4.4.8). When the
// owning partition is host-bound, the host's mode/size/blksize/blocks and
// timestamps take precedence over the virtual driver's own bookkeeping.
func (q *QFS) Stat(ctx context.Context, path string) (st Stat, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Stat")
	defer func() { report(err) }()

	r, rerr := q.resolve(path)
	if rerr != nil {
		return Stat{}, rerr
	}
	if r.node == nil {
		return Stat{}, ENOENT
	}

	st = statFromNode(r.node)

	if r.mountpoint.IsHostMounted() {
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return Stat{}, perr
		}
		hs, herr := q.hio.Stat(ctx, hostPath)
		if herr != nil {
			return Stat{}, herr
		}
		applyHostStat(&st, hs)
	}

	return st, nil
}

// FStat is Stat against an already-open handle.
func (q *QFS) FStat(ctx context.Context, fd int) (st Stat, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.FStat")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return Stat{}, EBADF
	}

	st = statFromNode(h.node)

	if h.isHostBound() {
		hs, herr := q.hio.FStat(ctx, h.hostFd)
		if herr != nil {
			return Stat{}, herr
		}
		applyHostStat(&st, hs)
	}

	return st, nil
}

// Chmod replaces path's permission bits, preserving its type bits
// (§4.3/§4.4.8).
func (q *QFS) Chmod(ctx context.Context, path string, mode uint32) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Chmod")
	defer func() { report(err) }()

	r, rerr := q.resolve(path)
	if rerr != nil {
		return rerr
	}
	if r.node == nil {
		return ENOENT
	}
	if q.isPartitionRO(r.mountpoint) {
		return EROFS
	}

	if r.mountpoint.IsHostMounted() {
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.Chmod(ctx, hostPath, mode); herr != nil {
			return herr
		}
	}

	r.node.Meta().Chmod(mode)
	return nil
}

// FChmod is Chmod against an already-open handle.
func (q *QFS) FChmod(ctx context.Context, fd int, mode uint32) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.FChmod")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return EBADF
	}
	if h.isHostBound() {
		if herr := q.hio.FChmod(ctx, h.hostFd, mode); herr != nil {
			return herr
		}
	}
	h.node.Meta().Chmod(mode)
	return nil
}

func applyHostStat(st *Stat, hs hostio.Stat) {
	st.Mode = (st.Mode &^ ModePermMask) | (hs.Mode & ModePermMask)
	st.Size = hs.Size
	st.Blksize = hs.Blksize
	st.Blocks = (hs.Size + 511) / 512
	st.Atim = hs.Atim
	st.Mtim = hs.Mtim
	st.Ctim = hs.Ctim
	if hs.Nlink > 0 {
		st.Nlink = hs.Nlink
	}
}
