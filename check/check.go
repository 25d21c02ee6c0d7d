// Package check validates a filesystem image without modifying it.
//
// A check makes one pass over the inode table, validating every block
// address, claiming the blocks it finds and counting the directory entries in
// directory blocks. Two reconciliation passes follow: every block the bitmap
// marks allocated must have been claimed, and every inode's allocation state
// and link count must agree with the directory entries that name it. The
// first violation ends the check.
package check

import (
	"errors"

	"go.uber.org/zap"

	"github.com/mit-pdos/go-fsck/alloc"
	"github.com/mit-pdos/go-fsck/claim"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/super"
	"github.com/mit-pdos/go-fsck/util"
)

type Option func(*Checker)

// WithUnifiedClaims makes a block claimed once through a direct address and
// once through an indirect block a duplicate.
func WithUnifiedClaims() Option {
	return func(c *Checker) { c.unified = true }
}

// WithStrictDirScan decodes every entry of a directory block instead of
// stopping at the first out-of-range inode number, and rejects such entries.
func WithStrictDirScan() Option {
	return func(c *Checker) { c.strict = true }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l == nil {
			l = zap.NewNop()
		}
		c.log = l.Sugar()
	}
}

// Checker holds the state of one validation run over an image. The state is
// rebuilt by every call to Check.
type Checker struct {
	d       disk.Disk
	unified bool
	strict  bool
	log     *zap.SugaredLogger

	fs     *super.FsSuper
	alloc  *alloc.Alloc
	claims *claim.Tracker
	refs   *dir.Refs
	inodes []*inode.Dinode // decoded during the walk, indexed by inum
}

func MkChecker(d disk.Disk, opts ...Option) *Checker {
	c := &Checker{
		d:   d,
		log: util.Logger().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates the image and returns nil if it is consistent, or the
// first violation found as a *common.CheckError (or an I/O error from the
// disk).
func (c *Checker) Check() error {
	err := c.check()
	if err != nil {
		var ce *common.CheckError
		if errors.As(err, &ce) {
			c.log.Debugw("check failed", "error", ce.String())
		} else {
			c.log.Debugw("check failed", "error", err)
		}
		return err
	}
	c.log.Debugw("image is consistent",
		"inodes", c.fs.Ninodes,
		"direct", c.claims.Len(claim.Direct),
		"indirect", c.claims.Len(claim.Indirect),
		"unified", c.claims.Unified(),
		"bitmap", c.alloc.NumUsed())
	return nil
}

func (c *Checker) check() error {
	fs, err := super.ReadSuper(c.d)
	if err != nil {
		return err
	}
	c.fs = fs
	c.log.Debugw("superblock", "layout", fs.String())

	c.alloc, err = alloc.MkAlloc(fs)
	if err != nil {
		return err
	}
	c.claims = claim.MkTracker(c.unified)
	c.refs = dir.MkRefs(fs.Ninodes)
	c.inodes = make([]*inode.Dinode, fs.Ninodes)

	if err := c.checkRoot(); err != nil {
		return err
	}
	if err := c.walkInodes(); err != nil {
		return err
	}
	if err := c.checkBitmap(); err != nil {
		return err
	}
	return c.checkRefs()
}

// CheckImage validates an image held in memory.
func CheckImage(data []byte, opts ...Option) error {
	return MkChecker(disk.NewMemDisk(data), opts...).Check()
}

// CheckFile validates the image at path. Failure to open it is reported as
// common.ErrImageNotFound.
func CheckFile(path string, opts ...Option) error {
	d, err := disk.NewFileDisk(path)
	if err != nil {
		return err
	}
	defer d.Close()
	return MkChecker(d, opts...).Check()
}
