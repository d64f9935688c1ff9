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

// MKDir creates an empty directory at path (§4.4.7). The last component
// must not already exist (EEXIST); the parent must (ENOENT); the owning
// partition must be writable (EROFS).
func (q *QFS) MKDir(ctx context.Context, path string, mode uint32) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.MKDir")
	defer func() { report(err) }()

	r, rerr := q.resolve(path)
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
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return perr
		}
		if herr := q.hio.MKDir(ctx, hostPath, mode); herr != nil {
			return herr
		}
		hostUsed = true
	}

	child, verr := r.mountpoint.Mkdir(r.parent, r.leaf)
	if hostUsed && verr != nil {
		logDisagreement("MKDir", nil, verr)
	}
	if verr != nil {
		return verr
	}
	child.Meta().Chmod(mode)
	return nil
}

// RMDir removes the empty directory at path (§4.4.7). It must contain
// only "." and ".." (ENOTEMPTY otherwise, enforced by Directory.Unlink);
// a directory that is itself a mountpoint cannot be removed (EBUSY).
func (q *QFS) RMDir(ctx context.Context, path string) (err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.RMDir")
	defer func() { report(err) }()

	r, rerr := q.resolve(path)
	if rerr != nil {
		return rerr
	}
	dir, ok := r.node.(*inode.Directory)
	if !ok {
		return ENOTDIR
	}
	if dir.MountedRoot() != nil || (r.parent != nil && r.parent.MountedRoot() == dir) {
		return EBUSY
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
		if herr := q.hio.RMDir(ctx, hostPath); herr != nil {
			return herr
		}
		hostUsed = true
	}

	verr := r.mountpoint.Rmdir(r.parent, r.leaf)
	if hostUsed && verr != nil {
		logDisagreement("RMDir", nil, verr)
	}
	return verr
}
