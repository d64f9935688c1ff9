// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package quasifs

// Open flags (see §6.2). Chosen to match Linux so host pass-through is
// trivial: a flags value accepted by Open is also a flags value the host
// adapter can hand to the real openat(2).
const (
	O_RDONLY = 0
	O_WRONLY = 1
	O_RDWR   = 2
	O_ACCMODE = 0o3

	O_CREAT  = 0o100
	O_EXCL   = 0o200
	O_NOCTTY = 0o400
	O_TRUNC  = 0o1000
	O_APPEND = 0o2000

	// Accepted but ignored by QuasiFS semantics: there is no kernel I/O
	// scheduler, async notification queue or direct-I/O path to honor here.
	O_NONBLOCK = 0o4000
	O_DSYNC    = 0o10000
	O_ASYNC    = 0o20000
	O_DIRECT   = 0o40000
	O_LARGEFILE = 0o100000
	O_NOATIME  = 0o1000000
	O_CLOEXEC  = 0o2000000

	O_DIRECTORY = 0o200000
	O_NOFOLLOW  = 0o400000
	O_PATH      = 0o10000000
	O_TMPFILE   = O_DIRECTORY | 0o20000000
	O_SYNC      = 0o4010000
)

// unsupportedOpenFlags reports whether flags requests a feature QuasiFS
// never got a native implementation of (e.g. O_PATH callers expect an fd
// that bypasses permission checks on open). O_TMPFILE is checked as a full
// bit pattern match, not a subset, since it overlaps O_DIRECTORY.
func unsupportedOpenFlags(flags int) bool {
	if flags&O_TMPFILE == O_TMPFILE {
		return true
	}
	return flags&(O_NOFOLLOW|O_PATH) != 0
}
