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

package partition_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/jacobsa/timeutil"
	. "github.com/jacobsa/ogletest"

	"github.com/marecl/quasifs/inode"
	"github.com/marecl/quasifs/partition"
)

func TestPartition(t *testing.T) { RunTests(t) }

type PartitionTest struct {
	clock timeutil.SimulatedClock
	p     *partition.Partition
}

func init() { RegisterTestSuite(&PartitionTest{}) }

func (t *PartitionTest) SetUp(*TestInfo) {
	t.p = partition.New(1, "", &t.clock)
}

func (t *PartitionTest) RootResolvesToItself() {
	r, err := t.p.Resolve("/")
	AssertEq(nil, err)
	ExpectEq(inode.Node(t.p.Root()), r.Node)
}

func (t *PartitionTest) RootHasIdentity() {
	ExpectEq(int64(1), t.p.Root().Meta().Ino())
	ExpectEq(uint64(1), t.p.Root().Meta().Dev())
}

func (t *PartitionTest) TouchThenResolveFindsFile() {
	_, err := t.p.Touch(t.p.Root(), "f")
	AssertEq(nil, err)

	r, err := t.p.Resolve("/f")
	AssertEq(nil, err)
	ExpectTrue(r.Node.Meta().IsRegular())
}

func (t *PartitionTest) TouchDuplicateNameIsEEXIST() {
	_, err := t.p.Touch(t.p.Root(), "f")
	AssertEq(nil, err)

	_, err = t.p.Touch(t.p.Root(), "f")
	ExpectEq(unix.EEXIST, err)
}

func (t *PartitionTest) TouchNilParentIsEINVAL() {
	_, err := t.p.Touch(nil, "f")
	ExpectEq(unix.EINVAL, err)
}

func (t *PartitionTest) ResolveMissingLeafKeepsParent() {
	r, err := t.p.Resolve("/missing")
	ExpectEq(unix.ENOENT, err)
	ExpectEq(inode.Node(t.p.Root()), inode.Node(r.Parent))
	ExpectEq(nil, r.Node)
}

func (t *PartitionTest) ResolveMissingInteriorComponentClearsParent() {
	r, err := t.p.Resolve("/missing/leaf")
	ExpectEq(unix.ENOENT, err)
	ExpectEq(nil, r.Parent)
	ExpectEq(nil, r.Node)
}

func (t *PartitionTest) MkdirThenRmdir() {
	d, err := t.p.Mkdir(t.p.Root(), "d")
	AssertEq(nil, err)
	ExpectTrue(d.VerifyLinkCount())

	err = t.p.Rmdir(t.p.Root(), "d")
	AssertEq(nil, err)

	_, err = t.p.Resolve("/d")
	ExpectEq(unix.ENOENT, err)
}

func (t *PartitionTest) RmdirNonEmptyIsENOTEMPTY() {
	d, err := t.p.Mkdir(t.p.Root(), "d")
	AssertEq(nil, err)
	_, err = t.p.Touch(d, "f")
	AssertEq(nil, err)

	err = t.p.Rmdir(t.p.Root(), "d")
	ExpectEq(unix.ENOTEMPTY, err)
}

func (t *PartitionTest) LinkAndUnlinkAdjustNlink() {
	f, err := t.p.Touch(t.p.Root(), "a")
	AssertEq(nil, err)
	ExpectEq(1, f.Meta().Nlink())

	err = t.p.Link(f, t.p.Root(), "b")
	AssertEq(nil, err)
	ExpectEq(2, f.Meta().Nlink())

	err = t.p.Unlink(t.p.Root(), "a")
	AssertEq(nil, err)
	ExpectEq(1, f.Meta().Nlink())

	err = t.p.Unlink(t.p.Root(), "b")
	AssertEq(nil, err)
	ExpectEq(0, f.Meta().Nlink())
	ExpectEq(nil, t.p.GetInodeByFileno(f.Meta().Ino()))
}

func (t *PartitionTest) LinkRefusesDirectory() {
	d, err := t.p.Mkdir(t.p.Root(), "d")
	AssertEq(nil, err)

	err = t.p.Link(d, t.p.Root(), "d2")
	ExpectEq(unix.EPERM, err)
}

func (t *PartitionTest) ChmodPreservesType() {
	f, err := t.p.Touch(t.p.Root(), "f")
	AssertEq(nil, err)
	typeBefore := f.Meta().Type()

	f.Meta().Chmod(0o600)
	ExpectEq(typeBefore, f.Meta().Type())
	ExpectEq(uint32(0o600), f.Meta().Mode()&0o777)
}

func (t *PartitionTest) SymlinkDoesNotRequireExistingTarget() {
	s, err := t.p.Symlink(t.p.Root(), "link", "/nonexistent")
	AssertEq(nil, err)
	ExpectEq("/nonexistent", s.Follow())
}

func (t *PartitionTest) HostPathRejectsEscapeAttempt() {
	hp := partition.New(2, "/var/quasifs/root", &t.clock)
	_, err := hp.HostPath("../../etc/passwd")
	ExpectEq(unix.EACCES, err)
}

func (t *PartitionTest) HostPathJoinsCleanly() {
	hp := partition.New(2, "/var/quasifs/root", &t.clock)
	hostPath, err := hp.HostPath("/a/b")
	AssertEq(nil, err)
	ExpectEq("/var/quasifs/root/a/b", hostPath)
}

func (t *PartitionTest) HostPathOnNonHostBoundIsENODEV() {
	_, err := t.p.HostPath("/a")
	ExpectEq(unix.ENODEV, err)
}

func (t *PartitionTest) TrailingSlashOnRegularFileIsENOTDIR() {
	_, err := t.p.Touch(t.p.Root(), "f")
	AssertEq(nil, err)

	_, err = t.p.Resolve("/f/")
	ExpectEq(unix.ENOTDIR, err)
}

func (t *PartitionTest) TrailingSlashOnDirectoryResolves() {
	_, err := t.p.Mkdir(t.p.Root(), "d")
	AssertEq(nil, err)

	r, err := t.p.Resolve("/d/")
	AssertEq(nil, err)
	ExpectTrue(r.Node.Meta().IsDir())
}

func (t *PartitionTest) TrailingSlashOnSymlinkResolves() {
	_, err := t.p.Symlink(t.p.Root(), "s", "/nonexistent")
	AssertEq(nil, err)

	r, err := t.p.Resolve("/s/")
	AssertEq(nil, err)
	ExpectTrue(r.Node.Meta().IsSymlink())
}
