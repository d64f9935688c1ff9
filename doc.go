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

// Package quasifs implements an in-process, POSIX-shaped virtual
// filesystem: a hierarchical namespace of inodes (regular files,
// directories, symlinks, devices) that lives entirely in memory, with
// optional host-directory mirroring per partition.
//
// The primary elements of interest are:
//
//   - The QFS type, which is the facade client code drives: Open, Read,
//     Write, Seek, Truncate, Stat, Chmod, Link, Symlink, Unlink, MKDir,
//     RMDir, Mount and Unmount.
//
//   - Package partition, which holds the Partition type: the unit of
//     storage, inode indexing and link accounting that QFS composes into
//     a single namespace via its mount graph.
//
//   - Package inode, which holds the inode kinds (RegularFile, Directory,
//     Symlink, Device) and their shared metadata and invariants.
//
//   - Package hostio, which defines the adapter contract a partition's
//     host-mirrored operations are dispatched through, plus a working
//     OS-backed implementation.
package quasifs
