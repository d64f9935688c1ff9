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

package inode_test

import (
	"golang.org/x/sys/unix"

	"github.com/jacobsa/timeutil"
	. "github.com/jacobsa/ogletest"

	"github.com/marecl/quasifs/inode"
)

type DirectoryTest struct {
	clock timeutil.SimulatedClock
}

func init() { RegisterTestSuite(&DirectoryTest{}) }

func (t *DirectoryTest) SetUp(*TestInfo) {}

func (t *DirectoryTest) LinkRefusesNilChild() {
	d := inode.NewDirectory(&t.clock)
	err := d.Link("x", nil)
	ExpectEq(unix.ENOENT, err)
}

func (t *DirectoryTest) LinkRefusesDirectoryChild() {
	d := inode.NewDirectory(&t.clock)
	child := inode.NewDirectory(&t.clock)
	err := d.Link("sub", child)
	ExpectEq(unix.EINVAL, err)
}

func (t *DirectoryTest) LinkRefusesDuplicateName() {
	d := inode.NewDirectory(&t.clock)
	f := inode.NewRegularFile(&t.clock)
	AssertEq(nil, d.Link("f", f))

	err := d.Link("f", inode.NewRegularFile(&t.clock))
	ExpectEq(unix.EEXIST, err)
}

func (t *DirectoryTest) LinkIncrementsNlinkExceptForSymlinks() {
	d := inode.NewDirectory(&t.clock)

	f := inode.NewRegularFile(&t.clock)
	AssertEq(nil, d.Link("f", f))
	ExpectEq(1, f.Meta().Nlink())

	AssertEq(nil, d.Link("f2", f))
	ExpectEq(2, f.Meta().Nlink())

	s := inode.NewSymlink("/target", &t.clock)
	AssertEq(nil, d.Link("s", s))
	ExpectEq(1, s.Meta().Nlink())
}

func (t *DirectoryTest) UnlinkMissingIsENOENT() {
	d := inode.NewDirectory(&t.clock)
	ExpectEq(unix.ENOENT, d.Unlink("nope"))
}

func (t *DirectoryTest) UnlinkNonEmptyDirIsENOTEMPTY() {
	parent := inode.NewDirectory(&t.clock)
	child := inode.NewDirectory(&t.clock)
	AssertEq(nil, parent.Mkdir("child", child))
	AssertEq(nil, child.Mkdir(".", child))
	AssertEq(nil, child.Mkdir("..", parent))

	f := inode.NewRegularFile(&t.clock)
	AssertEq(nil, child.Link("f", f))

	err := parent.Unlink("child")
	ExpectEq(unix.ENOTEMPTY, err)
}

func (t *DirectoryTest) LookupAndListReflectEntries() {
	d := inode.NewDirectory(&t.clock)
	f := inode.NewRegularFile(&t.clock)
	AssertEq(nil, d.Link("f", f))

	ExpectEq(f, d.Lookup("f"))
	ExpectEq(nil, d.Lookup("missing"))

	names := d.List()
	AssertEq(1, len(names))
	ExpectEq("f", names[0])
}

func (t *DirectoryTest) SizeIsEntryCountTimes32() {
	d := inode.NewDirectory(&t.clock)
	AssertEq(nil, d.Link("a", inode.NewRegularFile(&t.clock)))
	AssertEq(nil, d.Link("b", inode.NewRegularFile(&t.clock)))
	ExpectEq(int64(64), d.Size())
}

func (t *DirectoryTest) MkdirWiresRelativeEntriesAndNlink() {
	root := inode.NewDirectory(&t.clock)
	AssertEq(nil, root.Mkdir(".", root))
	AssertEq(nil, root.Mkdir("..", root))
	ExpectTrue(root.VerifyLinkCount())

	child := inode.NewDirectory(&t.clock)
	AssertEq(nil, root.Mkdir("child", child))
	AssertEq(nil, child.Mkdir(".", child))
	AssertEq(nil, child.Mkdir("..", root))

	ExpectTrue(child.VerifyLinkCount())
	ExpectTrue(root.VerifyLinkCount())
	ExpectEq(3, root.Meta().Nlink()) // 2 + one subdirectory
}

func (t *DirectoryTest) MountedRootIsSetAndCleared() {
	d := inode.NewDirectory(&t.clock)
	ExpectEq(nil, d.MountedRoot())

	mounted := inode.NewDirectory(&t.clock)
	d.SetMountedRoot(mounted)
	ExpectEq(mounted, d.MountedRoot())

	d.SetMountedRoot(nil)
	ExpectEq(nil, d.MountedRoot())
}
