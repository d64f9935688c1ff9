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

package hostio_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/net/context"
	"golang.org/x/sys/unix"

	. "github.com/jacobsa/ogletest"

	"github.com/marecl/quasifs/hostio"
)

func TestHostio(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////
// NoopAdapter
////////////////////////////////////////////////////////////////////

type NoopAdapterTest struct {
	ctx context.Context
	a   hostio.NoopAdapter
}

func init() { RegisterTestSuite(&NoopAdapterTest{}) }

func (t *NoopAdapterTest) SetUp(*TestInfo) {
	t.ctx = context.Background()
}

func (t *NoopAdapterTest) EveryVerbReturnsEINVAL() {
	_, err := t.a.Open(t.ctx, "/x", 0, 0)
	ExpectEq(unix.EINVAL, err)

	ExpectEq(unix.EINVAL, t.a.Close(t.ctx, 0))
	ExpectEq(unix.EINVAL, t.a.Link(t.ctx, "/a", "/b"))
	ExpectEq(unix.EINVAL, t.a.LinkSymbolic(t.ctx, "/a", "/b"))
	ExpectEq(unix.EINVAL, t.a.Unlink(t.ctx, "/a"))
	ExpectEq(unix.EINVAL, t.a.MKDir(t.ctx, "/a", 0))
	ExpectEq(unix.EINVAL, t.a.RMDir(t.ctx, "/a"))
	ExpectEq(unix.EINVAL, t.a.Chmod(t.ctx, "/a", 0))
	ExpectEq(unix.EINVAL, t.a.Truncate(t.ctx, "/a", 0))
}

////////////////////////////////////////////////////////////////////
// OSAdapter
////////////////////////////////////////////////////////////////////

type OSAdapterTest struct {
	ctx context.Context
	dir string
	a   *hostio.OSAdapter
}

func init() { RegisterTestSuite(&OSAdapterTest{}) }

func (t *OSAdapterTest) SetUp(*TestInfo) {
	t.ctx = context.Background()
	dir, err := os.MkdirTemp("", "hostio_test")
	if err != nil {
		panic(err)
	}
	t.dir = dir
	t.a = hostio.NewOSAdapter()
}

func (t *OSAdapterTest) WriteThenReadRoundTrips() {
	path := filepath.Join(t.dir, "f")

	fd, err := t.a.Open(t.ctx, path, unix.O_CREAT|unix.O_RDWR, 0o644)
	AssertEq(nil, err)

	n, err := t.a.Write(t.ctx, fd, []byte("hello"))
	AssertEq(nil, err)
	ExpectEq(5, n)

	buf := make([]byte, 5)
	n, err = t.a.PRead(t.ctx, fd, buf, 0)
	AssertEq(nil, err)
	ExpectEq(5, n)
	ExpectEq("hello", string(buf))

	AssertEq(nil, t.a.Close(t.ctx, fd))
}

func (t *OSAdapterTest) LinkSymbolicCreatesASymlink() {
	target := filepath.Join(t.dir, "target")
	link := filepath.Join(t.dir, "link")

	fd, err := t.a.Open(t.ctx, target, unix.O_CREAT|unix.O_WRONLY, 0o644)
	AssertEq(nil, err)
	AssertEq(nil, t.a.Close(t.ctx, fd))

	AssertEq(nil, t.a.LinkSymbolic(t.ctx, target, link))

	st, err := t.a.Stat(t.ctx, link)
	AssertEq(nil, err)
	ExpectEq(int64(0), st.Size)
}

func (t *OSAdapterTest) StatReportsSize() {
	path := filepath.Join(t.dir, "sized")
	fd, err := t.a.Open(t.ctx, path, unix.O_CREAT|unix.O_WRONLY, 0o644)
	AssertEq(nil, err)
	_, err = t.a.Write(t.ctx, fd, []byte("abcd"))
	AssertEq(nil, err)
	AssertEq(nil, t.a.Close(t.ctx, fd))

	st, err := t.a.Stat(t.ctx, path)
	AssertEq(nil, err)
	ExpectEq(int64(4), st.Size)
}

func (t *OSAdapterTest) UnknownFdIsEBADF() {
	_, err := t.a.Read(t.ctx, 999, make([]byte, 1))
	ExpectEq(unix.EBADF, err)
}
