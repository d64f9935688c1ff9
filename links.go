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

	"github.com/marecl/quasifs/inode"
)

// Link creates a new name, dst, for the existing inode at src -- a
// hardlink (§4.4.6). Both ends must resolve onto the same partition
// (EXDEV otherwise); the destination partition must be writable (EROFS);
// a host-bound link requires both src and dst to be host-bound, or it's
// ENOSYS (mixing a real hardlink with a purely virtual one has no sane
// host-side equivalent).
func (q *QFS) Link(ctx context.Context, src, dst string) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Link")
	defer func() { report(err) }()

	sr, serr := q.resolve(src)
	if serr != nil {
		return serr
	}
	if sr.node == nil {
		return ENOENT
	}

	dr, derr := q.resolve(dst)
	if derr != nil && derr != ENOENT {
		return derr
	}
	if dr.node != nil {
		return EEXIST
	}
	if dr.parent == nil {
		return ENOENT
	}

	if sr.mountpoint.BlockID() != dr.mountpoint.BlockID() {
		return EXDEV
	}
	if q.isPartitionRO(dr.mountpoint) {
		return EROFS
	}

	srcHostBound := sr.mountpoint.IsHostMounted()
	dstHostBound := dr.mountpoint.IsHostMounted()
	if srcHostBound != dstHostBound {
		return ENOSYS
	}

	if dstHostBound {
		srcHostPath, perr := sr.mountpoint.HostPath(sr.localPath)
		if perr != nil {
			return perr
		}
		dstHostPath, perr := dr.mountpoint.HostPath(dr.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.Link(ctx, srcHostPath, dstHostPath); herr != nil {
			return herr
		}
	}

	verr := dr.mountpoint.Link(sr.node, dr.parent, dr.leaf)
	if dstHostBound && verr != nil {
		logDisagreement("Link", nil, verr)
	}
	return verr
}

// Symlink creates a symlink named dst whose target is the literal string
// src (not resolved -- src need not exist, §4.4.6).
func (q *QFS) Symlink(ctx context.Context, src, dst string) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Symlink")
	defer func() { report(err) }()

	r, rerr := q.resolve(dst)
	if rerr != nil && rerr != ENOENT {
		return rerr
	}
	if r.node != nil {
		return EEXIST
	}
	if r.parent == nil {
		return ENOENT
	}
	if q.isPartitionRO(r.mountpoint) {
		return EROFS
	}

	hostUsed := false
	if r.mountpoint.IsHostMounted() {
		dstHostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.LinkSymbolic(ctx, src, dstHostPath); herr != nil {
			return herr
		}
		hostUsed = true
	}

	_, verr := r.mountpoint.Symlink(r.parent, r.leaf, src)
	if hostUsed && verr != nil {
		logDisagreement("Symlink", nil, verr)
	}
	return verr
}

// Unlink removes the name path from its parent directory, dropping one
// hardlink off the target inode (§4.4.6). A directory target is EISDIR;
// a missing target is ENOENT.
func (q *QFS) Unlink(ctx context.Context, path string) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Unlink")
	defer func() { report(err) }()

	r, rerr := q.resolve(path)
	if rerr != nil {
		return rerr
	}
	if r.node == nil {
		return ENOENT
	}
	if _, isDir := r.node.(*inode.Directory); isDir {
		return EISDIR
	}
	if q.isPartitionRO(r.mountpoint) {
		return EROFS
	}

	hostUsed := false
	if r.mountpoint.IsHostMounted() {
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.Unlink(ctx, hostPath); herr != nil {
			return herr
		}
		hostUsed = true
	}

	verr := r.mountpoint.Unlink(r.parent, r.leaf)
	if hostUsed && verr != nil {
		logDisagreement("Unlink", nil, verr)
	}
	return verr
}
