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

package inode

import (
	"fmt"

	"github.com/jacobsa/timeutil"
	"golang.org/x/sys/unix"
)

// DirEntry is one name -> inode binding held by a Directory.
type DirEntry struct {
	Name string
	Node Node
}

// Directory is an ordered mapping of name -> inode (§3/§4.3). Every
// directory maintains "." -> itself and ".." -> its parent; nlink tracks
// 2 (the parent's entry for this dir, plus ".") plus one per subdirectory
// (each contributes its own ".." back-reference).
//
// Entries are held in a slot-reusable slice, mirroring the teacher's
// memfs inode.entries: indices stay stable across unrelated
// inserts/removes, which matters if a caller is iterating List() output.
type Directory struct {
	meta Meta

	entries []DirEntry // unused slots have Node == nil
	index   map[string]int

	mountedRoot *Directory
}

// NewDirectory creates an empty directory with the default mode (§6.3).
// The caller is responsible for wiring "." and ".." (see Mkdir below) --
// a fresh Directory has neither until its owning Partition does so.
func NewDirectory(clock timeutil.Clock) *Directory {
	d := &Directory{index: map[string]int{}}
	initMeta(&d.meta, quasiModeDir|0o755, clock, d.checkInvariants)
	return d
}

func (d *Directory) Meta() *Meta { return &d.meta }

// checkInvariants mirrors the teacher's memfs inode.checkInvariants: no
// duplicate names among used entries, and the index stays consistent with
// the entries slice. The nlink == 2+subdirs formula (P4) is deliberately
// not asserted here -- it is true only once a multi-step mkdir finishes,
// and panicking mid-construction would make legitimate code paths crash.
// It's instead checked directly by tests (see VerifyLinkCount).
func (d *Directory) checkInvariants() {
	seen := make(map[string]struct{}, len(d.entries))
	for i, e := range d.entries {
		if e.Node == nil {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			panic(fmt.Sprintf("Directory: duplicate name %q", e.Name))
		}
		seen[e.Name] = struct{}{}
		if idx, ok := d.index[e.Name]; !ok || idx != i {
			panic(fmt.Sprintf("Directory: index out of sync for %q", e.Name))
		}
	}
}

// VerifyLinkCount reports whether nlink == 2 + count of subdirectories,
// the P4 invariant from the testable-properties section.
func (d *Directory) VerifyLinkCount() bool {
	d.meta.lock()
	defer d.meta.unlock()

	subdirs := 0
	for _, e := range d.entries {
		if e.Node == nil || e.Name == "." || e.Name == ".." {
			continue
		}
		if _, ok := e.Node.(*Directory); ok {
			subdirs++
		}
	}
	return d.meta.nlink == uint32(2+subdirs)
}

// MountedRoot returns the directory of the partition mounted at this
// directory, or nil if nothing is mounted here.
func (d *Directory) MountedRoot() *Directory {
	d.meta.lock()
	defer d.meta.unlock()
	return d.mountedRoot
}

// SetMountedRoot attaches or detaches a mounted partition's root.
func (d *Directory) SetMountedRoot(root *Directory) {
	d.meta.lock()
	defer d.meta.unlock()
	d.mountedRoot = root
}

// Lookup finds the entry named name, or nil if there is none.
func (d *Directory) Lookup(name string) Node {
	d.meta.lock()
	defer d.meta.unlock()
	idx, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.entries[idx].Node
}

// List returns the names of all live entries, in insertion order
// (including "." and ".."; callers that care filter those themselves, as
// Partition.Unlink/Rmdir do).
func (d *Directory) List() []string {
	d.meta.lock()
	defer d.meta.unlock()
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if e.Node != nil {
			names = append(names, e.Name)
		}
	}
	return names
}

func (d *Directory) insert(name string, node Node) {
	for i := range d.entries {
		if d.entries[i].Node == nil {
			d.entries[i] = DirEntry{Name: name, Node: node}
			d.index[name] = i
			return
		}
	}
	d.index[name] = len(d.entries)
	d.entries = append(d.entries, DirEntry{Name: name, Node: node})
}

// Link adds an entry pointing at child. Refuses a nil child (ENOENT), a
// directory child (EINVAL -- directories are only linked via Mkdir, never
// hardlinked), and an existing name (EEXIST). Increments child's nlink
// unless child is a symlink (§3, §4.3).
func (d *Directory) Link(name string, child Node) error {
	d.meta.lock()
	defer d.meta.unlock()

	if child == nil {
		return unix.ENOENT
	}
	if _, isDir := child.(*Directory); isDir {
		return unix.EINVAL
	}
	if _, exists := d.index[name]; exists {
		return unix.EEXIST
	}
	d.insert(name, child)
	if _, isSymlink := child.(*Symlink); !isSymlink {
		child.Meta().AddLink()
	}
	d.meta.touchModify()
	return nil
}

// Mkdir adds an entry named name pointing at child and unconditionally
// increments child's nlink, regardless of kind. Used both for real
// subdirectories and, by Partition.mkrelative, to wire a directory's own
// "." (child == the directory itself) and ".." (child == the parent)
// entries: "." gives a new directory its second link (the first is its
// entry in the parent), and ".." adds one to the parent.
func (d *Directory) Mkdir(name string, child *Directory) error {
	d.meta.lock()
	defer d.meta.unlock()

	if _, exists := d.index[name]; exists {
		return unix.EEXIST
	}
	d.insert(name, child)
	d.meta.touchModify()
	if child == d {
		// d's own lock is already held.
		d.meta.nlink++
		d.meta.touchStatus()
	} else {
		child.Meta().AddLink()
	}
	return nil
}

// Unlink removes the entry named name. A directory target must contain
// only "." and ".." (ENOTEMPTY otherwise). Always drops one link off the
// target, matching the lifecycle rule that an inode is reachable while
// nlink > 0 or some handle holds it.
func (d *Directory) Unlink(name string) error {
	d.meta.lock()
	defer d.meta.unlock()

	idx, ok := d.index[name]
	if !ok {
		return unix.ENOENT
	}
	target := d.entries[idx].Node

	if dir, isDir := target.(*Directory); isDir {
		for _, child := range dir.List() {
			if child != "." && child != ".." {
				return unix.ENOTEMPTY
			}
		}
	}

	target.Meta().DropLink()
	delete(d.index, name)
	d.entries[idx] = DirEntry{}
	d.meta.touchModify()
	return nil
}

// Size reports entries.size() * 32 on demand (§3), shadowing Meta.Size --
// a directory's size is never stored, it's computed from its entry count.
func (d *Directory) Size() int64 {
	d.meta.lock()
	defer d.meta.unlock()
	n := 0
	for _, e := range d.entries {
		if e.Node != nil {
			n++
		}
	}
	return int64(n * 32)
}
