package common

import (
	"errors"
	"fmt"
)

// Each error category is a distinct terminal outcome of a check. The
// messages are the single diagnostic line printed by the checker.
var (
	ErrImageNotFound = errors.New("image not found.")
	ErrBadSuper      = errors.New("ERROR: bad superblock.")

	ErrBadInode  = errors.New("ERROR: bad inode.")
	ErrAddrDir   = errors.New("ERROR: bad direct address in inode.")
	ErrAddrInd   = errors.New("ERROR: bad indirect address in inode.")
	ErrRootDir   = errors.New("ERROR: root directory does not exist.")
	ErrDirFormat = errors.New("ERROR: directory not properly formatted.")

	ErrMarkedFree  = errors.New("ERROR: address used by inode but marked free in bitmap.")
	ErrMarkedUsed  = errors.New("ERROR: bitmap marks block in use but it is not in use.")
	ErrDirectDup   = errors.New("ERROR: direct address used more than once.")
	ErrIndirectDup = errors.New("ERROR: indirect address used more than once.")

	ErrInodeUsed = errors.New("ERROR: inode marked use but not found in a directory.")
	ErrInodeFree = errors.New("ERROR: inode referred to in directory but marked free.")
	ErrFileRef   = errors.New("ERROR: bad reference count for file.")
	ErrDirRef    = errors.New("ERROR: directory appears more than once in file system.")
)

// CheckError is a violated invariant together with where it was found.
//
// Error returns only the category message; Inum, Bnum and Detail are for
// callers and debug logs that want more than the category.
type CheckError struct {
	Err    error // one of the category errors above
	Inum   Inum  // offending inode, NULLINUM if none
	Bnum   Bnum  // offending block, NULLBNUM if none
	Detail string
}

func (e *CheckError) Error() string {
	return e.Err.Error()
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// String describes the error including its location.
func (e *CheckError) String() string {
	s := e.Err.Error()
	if e.Inum != NULLINUM {
		s += fmt.Sprintf(" inum=%d", e.Inum)
	}
	if e.Bnum != NULLBNUM {
		s += fmt.Sprintf(" bnum=%d", e.Bnum)
	}
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

func MkInodeError(err error, inum Inum, detail string) error {
	return &CheckError{Err: err, Inum: inum, Detail: detail}
}

func MkBlockError(err error, inum Inum, bn Bnum, detail string) error {
	return &CheckError{Err: err, Inum: inum, Bnum: bn, Detail: detail}
}

var categories = []error{
	ErrImageNotFound, ErrBadSuper,
	ErrBadInode, ErrAddrDir, ErrAddrInd, ErrRootDir, ErrDirFormat,
	ErrMarkedFree, ErrMarkedUsed, ErrDirectDup, ErrIndirectDup,
	ErrInodeUsed, ErrInodeFree, ErrFileRef, ErrDirRef,
}

// Category returns the category error that err belongs to, or nil if err is
// nil or not a checker error.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
