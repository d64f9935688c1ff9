// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package quasifs

import (
	"golang.org/x/sys/unix"
)

// Errno is the error type returned by every QuasiFS operation. It is the
// same POSIX-shaped numeric space named in the errno set, backed directly by
// golang.org/x/sys/unix so host-adapter errors can be returned unmodified
// alongside virtual-driver errors.
type Errno = unix.Errno

// The errno subset exposed at the API boundary (see the errno set). Every
// API function returns nil or one of these; Read/Write/PRead/PWrite
// additionally return a non-negative byte count on success.
const (
	EACCES    = unix.EACCES
	EBADF     = unix.EBADF
	EBUSY     = unix.EBUSY
	EEXIST    = unix.EEXIST
	EFAULT    = unix.EFAULT
	EINVAL    = unix.EINVAL
	EISDIR    = unix.EISDIR
	ELOOP     = unix.ELOOP
	ENODEV    = unix.ENODEV
	ENOENT    = unix.ENOENT
	ENOSYS    = unix.ENOSYS
	ENOTDIR   = unix.ENOTDIR
	ENOTEMPTY = unix.ENOTEMPTY
	EPERM     = unix.EPERM
	EROFS     = unix.EROFS
	ESPIPE    = unix.ESPIPE
	EXDEV     = unix.EXDEV
)
