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

import "github.com/jacobsa/timeutil"

// Symlink holds an immutable target path, absolute or relative. nlink is
// fixed at 1 and is never incremented by linking (§3); unlinking the
// entry that names it drops it to 0.
type Symlink struct {
	meta   Meta
	target string
}

// NewSymlink creates a symlink pointing at target.
func NewSymlink(target string, clock timeutil.Clock) *Symlink {
	s := &Symlink{target: target}
	initMeta(&s.meta, quasiModeLnk|0o755, clock, s.checkInvariants)
	s.meta.nlink = 1
	s.meta.size = int64(len(target))
	return s
}

func (s *Symlink) Meta() *Meta { return &s.meta }

func (s *Symlink) checkInvariants() {
	if s.meta.nlink > 1 {
		panic("Symlink: nlink must never exceed 1")
	}
}

// Follow returns the symlink's target path.
func (s *Symlink) Follow() string {
	s.meta.lock()
	defer s.meta.unlock()
	return s.target
}
