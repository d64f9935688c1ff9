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

// Package inode holds the QuasiFS inode kinds: RegularFile, Directory,
// Symlink and Device. Each embeds Meta, the metadata and invariants common
// to every inode kind (mode, nlink, ino, dev, size, timestamps).
//
// Modeled as a tagged variant reached through the Node interface rather
// than a class hierarchy: callers type-switch on the concrete kind (or test
// Meta's type predicates) instead of relying on virtual dispatch, matching
// the "polymorphic inodes" design note.
package inode

import (
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"
)

// Node is implemented by every inode kind. A Node obtained from a directory
// entry or an open handle is a pointer to shared, mutable state: multiple
// directory entries (hardlinks) can reference the same Node.
type Node interface {
	Meta() *Meta
}

// Meta holds the fields common to every inode: the POSIX-shaped metadata
// from §3, guarded by an InvariantMutex that runs the owning kind's
// checkInvariants around each critical section. Those checks cover
// per-kind consistency (directory index, file size, symlink nlink,
// device ops); the nlink == 2+subdirs rule (P4) is checked by
// Directory.VerifyLinkCount, and P2/P3 are not asserted here.
type Meta struct {
	mu syncutil.InvariantMutex

	clock timeutil.Clock

	ino     int64
	dev     uint64
	mode    uint32
	nlink   uint32
	size    int64
	blksize int64
	blocks  int64

	atim, mtim, ctim time.Time

	// owner is set by the concrete kind's checkInvariants so Meta can run
	// kind-specific invariant checks (e.g. Directory's unique-name and
	// index checks) without Meta importing the concrete kinds.
	owner func()
}

// initMeta wires a Meta with its default mode/clock and stamps its initial
// timestamps. Concrete kinds call this from their constructors.
func initMeta(m *Meta, mode uint32, clock timeutil.Clock, owner func()) {
	if clock == nil {
		clock = timeutil.RealClock()
	}
	m.clock = clock
	m.mode = mode
	m.blksize = 4096
	m.owner = owner
	now := clock.Now()
	m.atim, m.mtim, m.ctim = now, now, now
	m.mu = syncutil.NewInvariantMutex(func() {
		if m.owner != nil {
			m.owner()
		}
	})
}

func (m *Meta) lock()   { m.mu.Lock() }
func (m *Meta) unlock() { m.mu.Unlock() }

// touchModify stamps mtim (and ctim, since content changed) with the current
// time. EXCLUSIVE_LOCKS_REQUIRED(m).
func (m *Meta) touchModify() {
	now := m.clock.Now()
	m.mtim = now
	m.ctim = now
}

// touchStatus stamps ctim only, for metadata-only changes (chmod, link
// count changes) that don't modify the content itself.
func (m *Meta) touchStatus() {
	m.ctim = m.clock.Now()
}

// Ino, Dev, Mode, Nlink, Size, Blksize and Blocks are read under lock so a
// concurrent (externally-synchronized) mutation can't be observed torn.
func (m *Meta) Ino() int64 {
	m.lock()
	defer m.unlock()
	return m.ino
}

func (m *Meta) Dev() uint64 {
	m.lock()
	defer m.unlock()
	return m.dev
}

func (m *Meta) Mode() uint32 {
	m.lock()
	defer m.unlock()
	return m.mode
}

func (m *Meta) Nlink() uint32 {
	m.lock()
	defer m.unlock()
	return m.nlink
}

func (m *Meta) Size() int64 {
	m.lock()
	defer m.unlock()
	return m.size
}

func (m *Meta) Blksize() int64 {
	m.lock()
	defer m.unlock()
	return m.blksize
}

func (m *Meta) Blocks() int64 {
	m.lock()
	defer m.unlock()
	return m.blocks
}

func (m *Meta) Times() (atim, mtim, ctim time.Time) {
	m.lock()
	defer m.unlock()
	return m.atim, m.mtim, m.ctim
}

// SetIdentity is called exactly once by a Partition when it indexes a fresh
// inode: it assigns the fileno/block id pair that makes the inode
// reachable via Partition.GetInodeByFileno (§3's "ino == fileno, dev ==
// block_id" invariant).
func (m *Meta) SetIdentity(ino int64, dev uint64) {
	m.lock()
	defer m.unlock()
	m.ino = ino
	m.dev = dev
}

// AddLink and DropLink adjust nlink. Directory.Link, Directory.Mkdir and
// Directory.Unlink call these, including for the "." and ".." entries
// Mkdir wires; Partition.Rmdir calls DropLink on the parent to undo the
// removed directory's "..".
func (m *Meta) AddLink() {
	m.lock()
	defer m.unlock()
	m.nlink++
	m.touchStatus()
}

func (m *Meta) DropLink() uint32 {
	m.lock()
	defer m.unlock()
	if m.nlink > 0 {
		m.nlink--
	}
	m.touchStatus()
	return m.nlink
}

// Chmod replaces the permission bits while preserving the type bits (§4.3).
func (m *Meta) Chmod(mode uint32) {
	m.lock()
	defer m.unlock()
	m.mode = (m.mode &^ 0o7777) | (mode & 0o7777)
	m.touchStatus()
}

// SetSize updates the reported size (and blocks) directly. RegularFile and
// its Mock variants set size themselves and do not go through it.
func (m *Meta) SetSize(n int64) {
	m.lock()
	defer m.unlock()
	m.size = n
	m.blocks = (n + 511) / 512
}

// Type extracts the type bits from mode, the top bits per §3/§6.3.
func (m *Meta) Type() uint32 { return m.Mode() &^ 0o7777 }

func (m *Meta) IsDir() bool     { return m.Type() == quasiModeDir }
func (m *Meta) IsRegular() bool { return m.Type() == quasiModeReg }
func (m *Meta) IsSymlink() bool { return m.Type() == quasiModeLnk }
func (m *Meta) IsChar() bool    { return m.Type() == quasiModeChr }

// CanRead, CanWrite and CanExecute OR the respective bit across
// owner/group/other: this core performs no principal-based check (§3).
func (m *Meta) CanRead() bool {
	mode := m.Mode()
	return mode&(0o400|0o040|0o004) != 0
}

func (m *Meta) CanWrite() bool {
	mode := m.Mode()
	return mode&(0o200|0o020|0o002) != 0
}

func (m *Meta) CanExecute() bool {
	mode := m.Mode()
	return mode&(0o100|0o010|0o001) != 0
}

// The type-bit constants duplicated here (rather than imported from the
// root package) avoid a cycle: the root package imports inode, so inode
// cannot import it back. They mirror S_IFDIR et al in mode.go exactly.
const (
	quasiModeDir = 0o040000
	quasiModeReg = 0o100000
	quasiModeLnk = 0o120000
	quasiModeChr = 0o020000
)
