// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package quasifs

// Mode bits (see §6.3): the type is carried in the top bits of a mode word,
// permissions in the low nine.
const (
	ModeTypeMask = 0o170000

	S_IFSOCK = 0o140000
	S_IFLNK  = 0o120000
	S_IFREG  = 0o100000
	S_IFBLK  = 0o060000
	S_IFDIR  = 0o040000
	S_IFCHR  = 0o020000
	S_IFIFO  = 0o010000

	ModePermMask = 0o777

	S_IRUSR = 0o400
	S_IWUSR = 0o200
	S_IXUSR = 0o100
	S_IRGRP = 0o040
	S_IWGRP = 0o020
	S_IXGRP = 0o010
	S_IROTH = 0o004
	S_IWOTH = 0o002
	S_IXOTH = 0o001
)

// Defaults new inodes are created with.
const (
	DefaultFileMode    = 0o755 | S_IFREG
	DefaultDirMode     = 0o755 | S_IFDIR
	DefaultSymlinkMode = 0o755 | S_IFLNK
)

// IsRegular, IsDir, IsSymlink and IsChar test the type bits of a mode word,
// the Go-side equivalent of the S_ISXXX(m) macros.
func IsRegular(mode uint32) bool { return mode&ModeTypeMask == S_IFREG }
func IsDir(mode uint32) bool     { return mode&ModeTypeMask == S_IFDIR }
func IsSymlink(mode uint32) bool { return mode&ModeTypeMask == S_IFLNK }
func IsChar(mode uint32) bool    { return mode&ModeTypeMask == S_IFCHR }
