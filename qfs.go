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
	"strings"
	"sync"

	"github.com/jacobsa/timeutil"
	"golang.org/x/sys/unix"

	"github.com/marecl/quasifs/hostio"
	"github.com/marecl/quasifs/inode"
	"github.com/marecl/quasifs/partition"
)

// QFS is a whole QuasiFS instance: one root partition, a mount graph
// built on top of it, and the table of handles its callers have open.
// Everything reachable through a QFS is private to that QFS -- there is
// no shared global state between two QFS values, including the block id
// and fileno counters each owned partition hands out (the design notes
// flag the reference implementation's global counters as a defect this
// port deliberately does not repeat).
type QFS struct {
	mu sync.Mutex

	rootfs *partition.Partition

	blockDevices map[uint64]*partition.Partition
	mountOptions map[uint64]uint32

	openFiles []*fileHandle

	nextBlockID uint64
	clock       timeutil.Clock

	// hio is shared by every host-bound partition, mirroring the
	// reference driver's single hio_driver member.
	hio hostio.Adapter
}

// New creates an empty QFS with a single in-memory root partition.
func New() *QFS {
	return NewWithAdapter(hostio.NoopAdapter{})
}

// NewWithAdapter creates a QFS whose host-bound partitions (if any are
// later mounted with a host root) perform real I/O through hio.
func NewWithAdapter(hio hostio.Adapter) *QFS {
	clock := timeutil.RealClock()
	q := &QFS{
		blockDevices: map[uint64]*partition.Partition{},
		mountOptions: map[uint64]uint32{},
		nextBlockID:  1,
		clock:        clock,
		hio:          hio,
	}
	q.rootfs = q.newPartition("")
	q.blockDevices[q.rootfs.BlockID()] = q.rootfs
	q.mountOptions[q.rootfs.BlockID()] = MountRW | MountExec
	return q
}

// newPartition allocates the next block id from this QFS's own counter
// (never a package-level static, see the type doc) and builds a
// partition around it.
func (q *QFS) newPartition(hostRoot string) *partition.Partition {
	q.mu.Lock()
	blockID := q.nextBlockID
	q.nextBlockID++
	q.mu.Unlock()
	return partition.New(blockID, hostRoot, q.clock)
}

// RootFS returns the partition backing "/".
func (q *QFS) RootFS() *partition.Partition { return q.rootfs }

// Root returns the root directory.
func (q *QFS) Root() *inode.Directory { return q.rootfs.Root() }

func (q *QFS) partitionForBlockID(blkid uint64) *partition.Partition {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.blockDevices[blkid]
}

func (q *QFS) isPartitionRO(part *partition.Partition) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.mountOptions[part.BlockID()]&MountRW == 0
}

// resolved is the outcome of resolving a path across the whole mount
// graph: mountpoint is the partition that owns node, localPath is the
// path relative to mountpoint's own root (what a host adapter call needs
// to translate into a real host path).
type resolved struct {
	mountpoint *partition.Partition
	parent     *inode.Directory
	node       inode.Node
	leaf       string
	localPath  string
}

// resolve walks path across the mount graph, transparently crossing
// mountpoints and following symlinks, with a fixed iteration cap guarding
// against a cyclic bind (§4.2, ELOOP).
func (q *QFS) resolve(path string) (resolved, error) {
	mountpoint := q.rootfs
	currentPath := path

	for safety := 40; safety > 0; safety-- {
		pr, err := mountpoint.Resolve(currentPath)
		if err != nil {
			if err == unix.ENOENT {
				// Keep the parent of a missing last component so
				// create-style callers can create the leaf there.
				return resolved{
					mountpoint: mountpoint,
					parent:     pr.Parent,
					leaf:       pr.Leaf,
					localPath:  currentPath,
				}, err
			}
			return resolved{}, err
		}

		node := pr.Node

		if sym, ok := node.(*inode.Symlink); ok {
			target := sym.Follow()
			currentPath = joinRemainder(target, pr.Remainder)
			mountpoint = q.rootfs
			continue
		}

		// On crossing a mountpoint Partition.Resolve hands back the mounted
		// partition's root, whose dev names the partition to continue in.
		if dir, ok := node.(*inode.Directory); ok && dir.Meta().Dev() != mountpoint.BlockID() {
			mountedPart := q.partitionForBlockID(dir.Meta().Dev())
			if mountedPart == nil {
				return resolved{}, unix.ENOENT
			}
			mountpoint = mountedPart
			if pr.Remainder != "" {
				currentPath = pr.Remainder
				continue
			}
			currentPath = "/"
		}

		return resolved{
			mountpoint: mountpoint,
			parent:     pr.Parent,
			node:       node,
			leaf:       pr.Leaf,
			localPath:  currentPath,
		}, nil
	}

	return resolved{}, unix.ELOOP
}

func joinRemainder(base, remainder string) string {
	base = strings.TrimSuffix(base, "/")
	if remainder == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	if !strings.HasPrefix(remainder, "/") {
		remainder = "/" + remainder
	}
	return base + remainder
}

// Mount grafts fs's root at path, which must already exist and be a
// directory (§4.1). The target directory's own entries become
// unreachable for as long as the mount is in place.
//
// If options carries MountRemount, this instead finds the partition
// already mounted at path and updates its registered options in place,
// touching nothing in the inode graph (§4.5).
func (q *QFS) Mount(path string, fs *partition.Partition, options uint32) error {
	if options&MountRemount != 0 {
		return q.remount(path, options)
	}

	q.mu.Lock()
	if _, exists := q.blockDevices[fs.BlockID()]; exists {
		q.mu.Unlock()
		return unix.EEXIST
	}
	q.mu.Unlock()

	r, err := q.resolve(path)
	if err != nil {
		return err
	}
	dir, ok := r.node.(*inode.Directory)
	if !ok {
		return unix.ENOTDIR
	}
	if dir.MountedRoot() != nil {
		return unix.EEXIST
	}

	dir.SetMountedRoot(fs.Root())

	q.mu.Lock()
	q.blockDevices[fs.BlockID()] = fs
	q.mountOptions[fs.BlockID()] = options
	q.mu.Unlock()
	return nil
}

// remount updates the options of whatever partition is already mounted
// at path, without touching the mount graph itself.
func (q *QFS) remount(path string, options uint32) error {
	r, err := q.resolve(path)
	if err != nil {
		return err
	}
	mounted, ok := r.node.(*inode.Directory)
	if !ok {
		return unix.ENOTDIR
	}
	// resolve lands on the mounted root; the mountpoint is r.parent.
	if r.parent == nil || r.parent.MountedRoot() != mounted {
		return unix.EINVAL
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	blkid := mounted.Meta().Dev()
	if _, exists := q.blockDevices[blkid]; !exists {
		return unix.EINVAL
	}
	q.mountOptions[blkid] = options
	return nil
}

// Unmount detaches whatever partition is mounted at path.
func (q *QFS) Unmount(path string) error {
	r, err := q.resolve(path)
	if err != nil {
		return err
	}

	dir := r.parent
	if dir == nil {
		return unix.EINVAL
	}
	if dir.MountedRoot() == nil {
		return unix.EINVAL
	}

	blkid := r.mountpoint.BlockID()
	dir.SetMountedRoot(nil)

	q.mu.Lock()
	delete(q.blockDevices, blkid)
	delete(q.mountOptions, blkid)
	q.mu.Unlock()
	return nil
}
