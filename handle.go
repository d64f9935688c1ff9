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
	"sync"

	"github.com/marecl/quasifs/inode"
)

// fileHandle is one open-file entry: the node it refers to, whether a
// host fd backs it, the read/write/append flags fixed at open time, and
// the cursor Lseek/Read/Write advance.
type fileHandle struct {
	mu sync.Mutex

	node   inode.Node
	hostFd int // -1 when this handle isn't host-bound

	read, write, appendOnly bool

	offset int64
}

func (h *fileHandle) isHostBound() bool { return h.hostFd >= 0 }

// getFreeHandleNo returns the lowest-numbered slot in openFiles, reusing
// a nil'd-out slot left by Close rather than always growing the table --
// the same first-fit bookkeeping QFS::GetFreeHandleNo uses.
func (q *QFS) getFreeHandleNo() int {
	for i, h := range q.openFiles {
		if h == nil {
			return i
		}
	}
	q.openFiles = append(q.openFiles, nil)
	return len(q.openFiles) - 1
}

func (q *QFS) getHandle(fd int) *fileHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	if fd < 0 || fd >= len(q.openFiles) {
		return nil
	}
	return q.openFiles[fd]
}
