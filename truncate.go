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

// Truncate resizes the regular file at path to length, zero-filling any
// extension (§4.4.5). Negative length is EINVAL; a directory is EISDIR;
// any other non-regular node is EINVAL.
func (q *QFS) Truncate(ctx context.Context, path string, length int64) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Truncate")
	defer func() { report(err) }()

	if length < 0 {
		return EINVAL
	}

	r, rerr := q.resolve(path)
	if rerr != nil {
		return rerr
	}
	if q.isPartitionRO(r.mountpoint) {
		return EROFS
	}
	if _, isDir := r.node.(*inode.Directory); isDir {
		return EISDIR
	}
	file, ok := r.node.(*inode.RegularFile)
	if !ok {
		return EINVAL
	}

	if r.mountpoint.IsHostMounted() {
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.Truncate(ctx, hostPath, length); herr != nil {
			return herr
		}
		file.MockTruncate(length)
		return nil
	}

	file.Truncate(length)
	return nil
}

// FTruncate is Truncate against an already-open handle.
func (q *QFS) FTruncate(ctx context.Context, fd int, length int64) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.FTruncate")
	defer func() { report(err) }()

	if length < 0 {
		return EINVAL
	}

	h := q.getHandle(fd)
	if h == nil {
		return EBADF
	}
	if !h.write {
		return EBADF
	}
	if _, isDir := h.node.(*inode.Directory); isDir {
		return EISDIR
	}
	file, ok := h.node.(*inode.RegularFile)
	if !ok {
		return EINVAL
	}

	if h.isHostBound() {
		if herr := q.hio.FTruncate(ctx, h.hostFd, length); herr != nil {
			return herr
		}
		file.MockTruncate(length)
		return nil
	}

	file.Truncate(length)
	return nil
}
