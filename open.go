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

// Open resolves path and returns a new file descriptor for it, creating
// the file first if O_CREAT is set and it doesn't exist (§4.4.1). The
// dispatch discipline below -- resolve, check policy, call the host
// adapter if this partition mirrors one, then the virtual driver -- is
// followed by the path-based operations in this file and in
// links.go/dirops.go/statops.go/truncate.go; Open, Link, Symlink, Unlink,
// MKDir and RMDir also log a virtual failure after a host success.
func (q *QFS) Open(ctx context.Context, path string, flags int, mode uint32) (fd int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Open")
	defer func() { report(err) }()

	if unsupportedOpenFlags(flags) {
		return -1, ENOSYS
	}

	r, rerr := q.resolve(path)
	if rerr == ENOENT {
		if r.parent == nil {
			return -1, ENOENT
		}
	} else if rerr != nil {
		return -1, rerr
	}

	requestWrite := flags&(O_WRONLY|O_RDWR) != 0
	requestRead := !requestWrite || flags&O_RDWR != 0
	requestAppend := flags&O_APPEND != 0
	requestMutate := requestWrite || requestAppend || flags&(O_CREAT|O_TRUNC) != 0

	if requestMutate && q.isPartitionRO(r.mountpoint) {
		return -1, EROFS
	}

	checked := r.node
	if checked == nil {
		checked = r.parent
	}
	if checked == nil {
		return -1, ENOENT
	}
	if (requestRead && !checked.Meta().CanRead()) || (requestWrite && !checked.Meta().CanWrite()) {
		return -1, EACCES
	}

	hostUsed := false
	hostFd := -1

	if r.mountpoint.IsHostMounted() {
		hostPath, perr := r.mountpoint.HostPath(r.localPath)
		if perr != nil {
			return -1, perr
		}
		fd, herr := q.hio.Open(ctx, hostPath, flags, mode)
		if herr != nil {
			return -1, herr
		}
		hostFd = fd
		hostUsed = true
	}

	node, verr := q.vioOpen(r, flags, mode)
	if hostUsed && verr != nil {
		logDisagreement("Open", nil, verr)
	}
	if verr != nil {
		return -1, verr
	}

	h := &fileHandle{
		node:   node,
		hostFd: -1,
		read:   requestRead,
		write:  requestWrite || requestAppend,
		appendOnly: requestAppend,
	}
	if hostUsed {
		h.hostFd = hostFd
	}
	if requestAppend {
		h.offset = node.Meta().Size()
	}

	q.mu.Lock()
	slot := q.getFreeHandleNo()
	q.openFiles[slot] = h
	q.mu.Unlock()

	return slot, nil
}

// vioOpen is the virtual driver's half of Open: create-on-demand, EEXIST
// enforcement, and truncate-on-open, all against in-memory state only.
func (q *QFS) vioOpen(r resolved, flags int, mode uint32) (inode.Node, error) {
	if r.node == nil {
		if flags&O_CREAT == 0 {
			return nil, ENOENT
		}
		child, err := r.mountpoint.Touch(r.parent, r.leaf)
		if err != nil {
			return nil, err
		}
		if r.mountpoint.IsHostMounted() {
			child.SetMirrored(true)
		}
		return child, nil
	}

	if flags&(O_CREAT|O_EXCL) == O_CREAT|O_EXCL {
		return nil, EEXIST
	}

	if dir, ok := r.node.(*inode.Directory); ok {
		if flags&(O_WRONLY|O_RDWR|O_TRUNC) != 0 {
			return nil, EISDIR
		}
		return dir, nil
	}

	if flags&O_DIRECTORY != 0 {
		return nil, ENOTDIR
	}

	if file, ok := r.node.(*inode.RegularFile); ok {
		// O_RDONLY|O_TRUNC is undefined per POSIX; the source this was
		// ported from accepts it and truncates anyway, so this port keeps
		// that behavior rather than silently diverging (see spec's open
		// questions).
		if flags&O_TRUNC != 0 {
			if file.Mirrored() {
				file.MockTruncate(0)
			} else {
				file.Truncate(0)
			}
		}
		return file, nil
	}

	if flags&O_TRUNC != 0 {
		return nil, EINVAL
	}

	return r.node, nil
}

// Creat is Open(path, O_CREAT|O_WRONLY|O_TRUNC, mode).
func (q *QFS) Creat(ctx context.Context, path string, mode uint32) (int, error) {
	return q.Open(ctx, path, O_CREAT|O_WRONLY|O_TRUNC, mode)
}

// Close releases fd (§4.4.2). A host-bound handle's host fd is closed
// first; failure there is ignored -- the slot is
// freed regardless, since a file descriptor that can't be closed still
// shouldn't go on occupying one.
func (q *QFS) Close(ctx context.Context, fd int) error {
	h := q.getHandle(fd)
	if h == nil {
		return EBADF
	}

	if h.isHostBound() {
		q.hio.Close(ctx, h.hostFd)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if fd < len(q.openFiles)-1 {
		q.openFiles[fd] = nil
		return nil
	}
	q.openFiles = q.openFiles[:len(q.openFiles)-1]
	return nil
}
