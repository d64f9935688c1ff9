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

// Package partition holds a single self-contained namespace: an inode
// table keyed by fileno, a root directory, a block id, and (optionally) a
// host directory it mirrors (§3, §4.1). A mount graph is built by wiring
// several Partitions together through Directory.SetMountedRoot; Partition
// itself knows nothing about the graph it's part of.
package partition

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/jacobsa/timeutil"
	"golang.org/x/sys/unix"

	"github.com/marecl/quasifs/inode"
)

// Resolved is the outcome of resolving a path within one partition.
// Parent/Node/Leaf describe where resolution landed; Remainder is set
// (and err is nil) when resolution stopped early because it crossed a
// mountpoint or hit a symlink, and holds the unconsumed path tail the
// caller must continue resolving against r.Node.
type Resolved struct {
	Parent    *inode.Directory
	Node      inode.Node
	Leaf      string
	Remainder string
}

// Partition is a self-contained filesystem namespace.
type Partition struct {
	// mu guards the inode table and the fileno counter; it is distinct
	// from each inode's own InvariantMutex, which guards that inode's own
	// fields only.
	mu sync.Mutex

	root       *inode.Directory
	table      map[int64]inode.Node
	nextFileno int64
	blockID    uint64
	hostRoot   string
	clock      timeutil.Clock
}

// New creates a partition with a fresh root directory, identified by
// blockID (the caller -- the owning QFS instance -- hands this out, per
// the "no global counters" design note: block ids are no longer a package
// level static like the reference implementation's next_block_id).
// hostRoot, if non-empty, makes this partition host-bound (§4.6).
func New(blockID uint64, hostRoot string, clock timeutil.Clock) *Partition {
	if clock == nil {
		clock = timeutil.RealClock()
	}
	p := &Partition{
		table:      map[int64]inode.Node{},
		nextFileno: 2,
		blockID:    blockID,
		hostRoot:   cleanHostRoot(hostRoot),
		clock:      clock,
	}
	p.root = inode.NewDirectory(clock)
	p.indexInode(p.root)
	p.mkrelative(p.root, p.root)
	return p
}

func cleanHostRoot(hostRoot string) string {
	if hostRoot == "" {
		return ""
	}
	return filepath.Clean(hostRoot)
}

func (p *Partition) Root() *inode.Directory { return p.root }
func (p *Partition) BlockID() uint64        { return p.blockID }
func (p *Partition) IsHostMounted() bool    { return p.hostRoot != "" }
func (p *Partition) HostRoot() string       { return p.hostRoot }

func (p *Partition) nextFilenoValue() int64 {
	f := p.nextFileno
	p.nextFileno++
	return f
}

// indexInode assigns the next fileno to node and adds it to the inode
// table. Every node is indexed exactly once, at creation -- unlike the
// reference driver, this port never re-indexes an already-built subtree
// (e.g. when grafting a prebuilt partition into a mount graph), which
// only that driver's C++ shared_ptr aliasing needed in the first place.
func (p *Partition) indexInode(node inode.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fileno := p.nextFilenoValue()
	node.Meta().SetIdentity(fileno, p.blockID)
	p.table[fileno] = node
}

// GetInodeByFileno looks a node up by its fileno (== st_ino for nodes in
// this partition).
func (p *Partition) GetInodeByFileno(fileno int64) inode.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table[fileno]
}

// rmInode drops node from the table once it's no longer reachable by
// name (nlink == 0). Open handles keeping a node alive past that point
// are the dispatch layer's concern (§3's lifecycle rule), not the table's.
func (p *Partition) rmInode(node inode.Node) error {
	if node == nil {
		return unix.ENOENT
	}
	if node.Meta().Nlink() > 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.table, node.Meta().Ino())
	return nil
}

// mkrelative wires child's "." (pointing at itself) and ".." (pointing at
// parent) entries: "." completes child's "+2" baseline and ".." adds
// child's contribution to parent's nlink (§4.3, P4).
func (p *Partition) mkrelative(parent, child *inode.Directory) {
	child.Mkdir(".", child)
	child.Mkdir("..", parent)
}

// Touch creates a regular file named name under parent.
func (p *Partition) Touch(parent *inode.Directory, name string) (*inode.RegularFile, error) {
	child := inode.NewRegularFile(p.clock)
	if err := p.TouchNode(parent, name, child); err != nil {
		return nil, err
	}
	return child, nil
}

// TouchNode links an already-constructed node (a RegularFile or Symlink)
// into parent under name and indexes it.
func (p *Partition) TouchNode(parent *inode.Directory, name string, child inode.Node) error {
	if parent == nil {
		return unix.EINVAL
	}
	if err := parent.Link(name, child); err != nil {
		return err
	}
	p.indexInode(child)
	return nil
}

// Symlink creates a symlink named name under parent pointing at target.
func (p *Partition) Symlink(parent *inode.Directory, name, target string) (*inode.Symlink, error) {
	child := inode.NewSymlink(target, p.clock)
	if err := p.TouchNode(parent, name, child); err != nil {
		return nil, err
	}
	return child, nil
}

// Mkdir creates a subdirectory named name under parent.
func (p *Partition) Mkdir(parent *inode.Directory, name string) (*inode.Directory, error) {
	if parent == nil {
		return nil, unix.ENOENT
	}
	child := inode.NewDirectory(p.clock)

	if err := parent.Mkdir(name, child); err != nil {
		return nil, err
	}
	p.indexInode(child)

	realParent := parent
	if mounted := parent.MountedRoot(); mounted != nil {
		realParent = mounted
	}
	p.mkrelative(realParent, child)

	return child, nil
}

// Rmdir removes the empty subdirectory named name under parent. Unlike
// the reference driver (whose Partition::rmdir was never implemented),
// this completes the operation: lookup, confirm it's a directory with no
// real entries, unlink it from parent, undo the ".." contribution it made
// to parent's own nlink, then drop it from the inode table outright --
// directory removal isn't governed by the hardlink-count lifecycle rule
// that regular files and symlinks follow, since a directory is never
// hardlinked to begin with.
func (p *Partition) Rmdir(parent *inode.Directory, name string) error {
	if parent == nil {
		return unix.ENOENT
	}
	if name == "" {
		return unix.EINVAL
	}
	if name == "." || name == ".." {
		return unix.EINVAL
	}

	target := parent.Lookup(name)
	if target == nil {
		return unix.ENOENT
	}
	dir, isDir := target.(*inode.Directory)
	if !isDir {
		return unix.ENOTDIR
	}

	if err := parent.Unlink(name); err != nil {
		return err
	}
	parent.Meta().DropLink()

	p.mu.Lock()
	delete(p.table, dir.Meta().Ino())
	p.mu.Unlock()
	return nil
}

// Link creates a second name, under destParent, for the existing node
// source (a hardlink). Directories can never be hardlinked (EPERM); the
// target name must not already exist (EEXIST).
func (p *Partition) Link(source inode.Node, destParent *inode.Directory, name string) error {
	if source == nil || destParent == nil {
		return unix.ENOENT
	}
	if name == "" {
		return unix.EINVAL
	}
	if destParent.Lookup(name) != nil {
		return unix.EEXIST
	}
	if _, isDir := source.(*inode.Directory); isDir {
		return unix.EPERM
	}
	return destParent.Link(name, source)
}

// Unlink removes the entry named name under parent, and reclaims the
// target's inode table slot once it's no longer reachable by any name.
func (p *Partition) Unlink(parent *inode.Directory, name string) error {
	if parent == nil {
		return unix.ENOENT
	}
	if name == "" {
		return unix.EINVAL
	}

	target := parent.Lookup(name)
	if target == nil {
		return unix.ENOENT
	}

	if err := parent.Unlink(name); err != nil {
		return err
	}
	return p.rmInode(target)
}

// Resolve walks path (always partition-absolute, never relative to a
// cwd -- this core has none, §1) to the node it names. Resolution stops
// early, with Remainder set to the unconsumed tail, when it crosses a
// mountpoint or lands on a symlink; the caller (the owning QFS's
// cross-partition resolver) is responsible for continuing from there.
func (p *Partition) Resolve(path string) (Resolved, error) {
	if path == "" {
		return Resolved{}, unix.EINVAL
	}
	if !strings.HasPrefix(path, "/") {
		return Resolved{}, unix.EBADF
	}

	// A trailing slash (and the path isn't just "/") demands that
	// whatever the last component resolves to be a directory or a
	// symlink -- checked once resolution finishes, not mid-walk, since
	// an early return (ENOENT, a mount descent, a symlink hit) already
	// carries its own status.
	trailingSlash := len(path) > 1 && strings.HasSuffix(path, "/")

	parts := splitPath(path)

	r := Resolved{Parent: p.root, Node: inode.Node(p.root)}
	var parent *inode.Directory = p.root
	var current inode.Node = p.root

	for i, part := range parts {
		isFinal := i == len(parts)-1

		dir, isDir := current.(*inode.Directory)
		_, isLink := current.(*inode.Symlink)
		if !isDir && !isLink && !isFinal {
			return Resolved{}, unix.ENOTDIR
		}

		if isDir {
			if !dir.Meta().CanRead() {
				return Resolved{}, unix.EACCES
			}
			parent = dir
			current = dir.Lookup(part)
			r.Parent = parent
			r.Node = current
			r.Leaf = part
		}

		if current == nil {
			if !isFinal {
				r.Node = nil
				r.Parent = nil
			}
			return r, unix.ENOENT
		}

		if childDir, ok := current.(*inode.Directory); ok {
			if mounted := childDir.MountedRoot(); mounted != nil {
				r.Parent = childDir
				r.Node = mounted
				r.Leaf = part
				r.Remainder = joinPath(parts[i+1:])
				return r, nil
			}
		}

		if _, ok := current.(*inode.Symlink); ok {
			r.Parent = parent
			r.Node = current
			r.Leaf = part
			r.Remainder = joinPath(parts[i+1:])
			return r, nil
		}
	}

	if trailingSlash {
		_, isDir := r.Node.(*inode.Directory)
		_, isLink := r.Node.(*inode.Symlink)
		if !isDir && !isLink {
			return Resolved{}, unix.ENOTDIR
		}
	}

	return r, nil
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return "/" + strings.Join(parts, "/")
}

// sanitize rejects a host path that has escaped hostRoot via ".." lexical
// tricks, mirroring Partition::SanitizePath's defense against malicious
// mapped names.
func (p *Partition) sanitize(path string) (string, bool) {
	clean := filepath.Clean(path)
	if clean == p.hostRoot || strings.HasPrefix(clean, strings.TrimSuffix(p.hostRoot, "/")+"/") {
		return clean, true
	}
	return "", false
}

// HostPath translates a partition-local path into the corresponding path
// on the mirrored host filesystem (§4.6). Returns ENODEV if this
// partition isn't host-bound, EACCES if the translated path would escape
// hostRoot.
func (p *Partition) HostPath(localPath string) (string, error) {
	if !p.IsHostMounted() {
		return "", unix.ENODEV
	}
	rel := strings.TrimPrefix(filepath.Clean(localPath), "/")
	target := filepath.Join(p.hostRoot, rel)
	sanitized, ok := p.sanitize(target)
	if !ok {
		return "", unix.EACCES
	}
	return sanitized, nil
}
