package check

import (
	"fmt"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/inode"
)

// checkBitmap requires every data block marked allocated to be claimed by
// some inode.
func (c *Checker) checkBitmap() error {
	for bn := c.fs.DataStart(); bn < c.fs.MaxBnum(); bn++ {
		if c.alloc.IsUsed(bn) && !c.claims.Claimed(bn) {
			return common.MkBlockError(common.ErrMarkedUsed, common.NULLINUM, bn, "")
		}
	}
	return nil
}

// checkRefs compares each inode's allocation state and link count with the
// directory entries that refer to it.
func (c *Checker) checkRefs() error {
	for i := common.ROOTINUM; i < c.fs.NInode(); i++ {
		ip := c.inodes[i]
		total := c.refs.Total(i)
		if ip.IsAllocated() && total == 0 {
			return common.MkInodeError(common.ErrInodeUsed, i, "")
		}
		if !ip.IsAllocated() && total > 0 {
			return common.MkInodeError(common.ErrInodeFree, i,
				fmt.Sprintf("%d entries", total))
		}
		if ip.Type == inode.T_FILE && uint64(ip.Nlink) != total {
			return common.MkInodeError(common.ErrFileRef, i,
				fmt.Sprintf("nlink %d, %d entries", ip.Nlink, total))
		}
		if i == common.ROOTINUM || ip.Type != inode.T_DIR {
			continue
		}
		if c.refs.Named[i] == 0 {
			return common.MkInodeError(common.ErrInodeUsed, i, "directory has no name")
		}
		if ip.Nlink > 1 {
			return common.MkInodeError(common.ErrDirRef, i,
				fmt.Sprintf("nlink %d", ip.Nlink))
		}
		if c.refs.Indirect[i] > 1 {
			return common.MkInodeError(common.ErrDirRef, i,
				fmt.Sprintf("%d entries in indirect blocks", c.refs.Indirect[i]))
		}
		if c.refs.Named[i] > 1 {
			return common.MkInodeError(common.ErrDirRef, i,
				fmt.Sprintf("linked from %d entries", c.refs.Named[i]))
		}
	}
	return nil
}
