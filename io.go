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

// Read copies bytes from fd's current cursor into p, advancing the cursor
// by the number of bytes returned on a positive return (§4.4.3).
func (q *QFS) Read(ctx context.Context, fd int, p []byte) (n int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Read")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return 0, EBADF
	}

	h.mu.Lock()
	if !h.read {
		h.mu.Unlock()
		return 0, EBADF
	}
	offset := h.offset
	h.mu.Unlock()

	n, err = q.readAt(ctx, h, p, offset)
	if err == nil && n > 0 {
		h.mu.Lock()
		h.offset += int64(n)
		h.mu.Unlock()
	}
	return n, err
}

// PRead reads count bytes at offset without disturbing fd's cursor.
func (q *QFS) PRead(ctx context.Context, fd int, p []byte, offset int64) (n int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.PRead")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return 0, EBADF
	}
	h.mu.Lock()
	canRead := h.read
	h.mu.Unlock()
	if !canRead {
		return 0, EBADF
	}

	return q.readAt(ctx, h, p, offset)
}

func (q *QFS) readAt(ctx context.Context, h *fileHandle, p []byte, offset int64) (int, error) {
	if h.isHostBound() {
		n, herr := q.hio.PRead(ctx, h.hostFd, p, offset)
		if herr != nil {
			return 0, herr
		}
		return n, nil
	}

	switch node := h.node.(type) {
	case *inode.RegularFile:
		return node.Read(p, offset), nil
	case *inode.Device:
		return node.Read(p)
	default:
		return 0, EINVAL
	}
}

// Write writes p at fd's current cursor (or, for an append handle, at the
// file's current size regardless of the cursor), advancing the cursor by
// the number of bytes written (§4.4.3).
func (q *QFS) Write(ctx context.Context, fd int, p []byte) (n int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.Write")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return 0, EBADF
	}

	h.mu.Lock()
	if !h.write {
		h.mu.Unlock()
		return 0, EBADF
	}
	offset := h.offset
	if h.appendOnly {
		if rf, ok := h.node.(*inode.RegularFile); ok {
			offset = rf.Meta().Size()
		}
	}
	h.mu.Unlock()

	n, err = q.writeAt(ctx, h, p, offset)
	if err == nil && n > 0 {
		h.mu.Lock()
		h.offset = offset + int64(n)
		h.mu.Unlock()
	}
	return n, err
}

// PWrite writes p at offset without disturbing fd's cursor (append
// handles still redirect to EOF, per §4.4.3).
func (q *QFS) PWrite(ctx context.Context, fd int, p []byte, offset int64) (n int, err error) {
	ctx, report := reqtrace.StartSpan(ctx, "quasifs.PWrite")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return 0, EBADF
	}
	h.mu.Lock()
	canWrite := h.write
	if h.appendOnly {
		if rf, ok := h.node.(*inode.RegularFile); ok {
			offset = rf.Meta().Size()
		}
	}
	h.mu.Unlock()
	if !canWrite {
		return 0, EBADF
	}

	return q.writeAt(ctx, h, p, offset)
}

func (q *QFS) writeAt(ctx context.Context, h *fileHandle, p []byte, offset int64) (int, error) {
	if h.isHostBound() {
		n, herr := q.hio.PWrite(ctx, h.hostFd, p, offset)
		if herr != nil {
			return 0, herr
		}
		if rf, ok := h.node.(*inode.RegularFile); ok {
			rf.MockWrite(offset, n)
		}
		return n, nil
	}

	switch node := h.node.(type) {
	case *inode.RegularFile:
		return node.Write(p, offset), nil
	case *inode.Device:
		return node.Write(p)
	default:
		return 0, EINVAL
	}
}

// LSeek repositions fd's cursor to base+offset, where base is chosen by
// origin (§4.4.4). A negative result is rejected with EINVAL and leaves
// the cursor untouched; a position past EOF is accepted without growing
// the file.
func (q *QFS) LSeek(ctx context.Context, fd int, offset int64, origin SeekOrigin) (pos int64, err error) {
	_, report := reqtrace.StartSpan(ctx, "quasifs.LSeek")
	defer func() { report(err) }()

	h := q.getHandle(fd)
	if h == nil {
		return 0, EBADF
	}

	if _, isDev := h.node.(*inode.Device); isDev {
		return 0, ESPIPE
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var base int64
	switch origin {
	case SeekOriginStart:
		base = 0
	case SeekOriginCurrent:
		base = h.offset
	case SeekOriginEnd:
		base = h.node.Meta().Size()
	default:
		return 0, EINVAL
	}

	newPos := base + offset
	if newPos < 0 {
		return 0, EINVAL
	}
	h.offset = newPos
	return newPos, nil
}

// Tell is LSeek(fd, 0, SeekOriginCurrent) (§4.4.4).
func (q *QFS) Tell(ctx context.Context, fd int) (int64, error) {
	return q.LSeek(ctx, fd, 0, SeekOriginCurrent)
}
