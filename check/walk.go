package check

import (
	"fmt"

	"github.com/mit-pdos/go-fsck/alloc"
	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/claim"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/inode"
)

// checkRoot requires the root inode to be a directory that is its own parent.
func (c *Checker) checkRoot() error {
	if c.fs.NInode() <= common.ROOTINUM {
		return common.MkInodeError(common.ErrRootDir, common.ROOTINUM, "no root inode slot")
	}
	root, err := inode.ReadInode(c.fs, common.ROOTINUM)
	if err != nil {
		return err
	}
	if root.Type != inode.T_DIR {
		return common.MkInodeError(common.ErrRootDir, common.ROOTINUM,
			fmt.Sprintf("root is %v", root.Type))
	}
	bn := root.Addrs[0]
	if bn == common.NULLBNUM || bn >= c.fs.MaxBnum() {
		return common.MkBlockError(common.ErrRootDir, common.ROOTINUM, bn, "no first block")
	}
	blk, err := c.fs.Disk.Read(bn)
	if err != nil {
		return err
	}
	if parent := dir.Entry(bn, blk, 1); parent.Inum != common.ROOTINUM {
		return common.MkBlockError(common.ErrRootDir, common.ROOTINUM, bn,
			fmt.Sprintf("parent is %d", parent.Inum))
	}
	return nil
}

func (c *Checker) walkInodes() error {
	for i := common.ROOTINUM; i < c.fs.NInode(); i++ {
		ip, err := inode.ReadInode(c.fs, i)
		if err != nil {
			return err
		}
		c.inodes[i] = ip
		if !ip.IsAllocated() {
			continue
		}
		if !ip.Type.Valid() {
			return common.MkInodeError(common.ErrBadInode, i, ip.Type.String())
		}
		c.log.Debugw("inode", "inum", i, "type", ip.Type, "nlink", ip.Nlink)

		for _, bn := range ip.Direct() {
			if err := c.useBlock(ip, claim.Direct, bn); err != nil {
				return err
			}
		}
		if ind := ip.Indirect(); ind != common.NULLBNUM {
			if err := c.walkIndirect(ip, ind); err != nil {
				return err
			}
		}
		if ip.Type == inode.T_DIR {
			if err := c.checkDirFormat(ip); err != nil {
				return err
			}
		}
	}
	return nil
}

// validate applies the address checks to a block number found in ip.
func (c *Checker) validate(ip *inode.Dinode, kind claim.Kind, bn common.Bnum) error {
	switch c.alloc.Validate(bn) {
	case alloc.StatusOutOfBounds:
		e := common.ErrAddrDir
		if kind == claim.Indirect {
			e = common.ErrAddrInd
		}
		return common.MkBlockError(e, ip.Inum, bn,
			fmt.Sprintf("outside data region [%d, %d)", c.fs.DataStart(), c.fs.MaxBnum()))
	case alloc.StatusMarkedFree:
		return common.MkBlockError(common.ErrMarkedFree, ip.Inum, bn, kind.String())
	}
	return nil
}

// useBlock validates and claims a content block of ip, and counts its
// entries if ip is a directory.
func (c *Checker) useBlock(ip *inode.Dinode, kind claim.Kind, bn common.Bnum) error {
	if err := c.validate(ip, kind, bn); err != nil {
		return err
	}
	if err := c.claims.Claim(kind, bn, ip.Inum); err != nil {
		return err
	}
	if ip.Type != inode.T_DIR {
		return nil
	}
	blk, err := c.fs.Disk.Read(bn)
	if err != nil {
		return err
	}
	ents, err := dir.Scan(bn, blk, c.fs.Ninodes, c.strict)
	if err != nil {
		return err
	}
	c.refs.Add(kind, ents)
	return nil
}

// walkIndirect claims the indirect block of ip and every block it lists, up
// to the first unused entry.
func (c *Checker) walkIndirect(ip *inode.Dinode, ind common.Bnum) error {
	if err := c.validate(ip, claim.Indirect, ind); err != nil {
		return err
	}
	if err := c.claims.Claim(claim.Indirect, ind, ip.Inum); err != nil {
		return err
	}
	blk, err := c.fs.Disk.Read(ind)
	if err != nil {
		return err
	}
	for _, bn := range buf.MkBlockBuf(ind, blk).Bnums() {
		if bn == common.NULLBNUM {
			break
		}
		if err := c.useBlock(ip, claim.Indirect, bn); err != nil {
			return err
		}
	}
	return nil
}

// checkDirFormat requires a directory's first block to start with "." naming
// the directory itself and ".." naming some inode.
func (c *Checker) checkDirFormat(ip *inode.Dinode) error {
	bn := ip.Addrs[0]
	if bn == common.NULLBNUM {
		return common.MkInodeError(common.ErrDirFormat, ip.Inum, "no first block")
	}
	blk, err := c.fs.Disk.Read(bn)
	if err != nil {
		return err
	}
	self := dir.Entry(bn, blk, 0)
	parent := dir.Entry(bn, blk, 1)
	if self.Inum == common.NULLINUM || parent.Inum == common.NULLINUM ||
		!self.IsDot() || !parent.IsDotDot() || self.Inum != ip.Inum {
		return common.MkBlockError(common.ErrDirFormat, ip.Inum, bn,
			fmt.Sprintf("entries %v, %v", self, parent))
	}
	return nil
}
