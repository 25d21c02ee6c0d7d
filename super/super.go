// Package super decodes the superblock and derives the on-disk layout from it.
//
// The image is laid out as
//
//	[ unused | super | inode blocks | bitmap | data blocks ]
//	    0        1     2 ..            ninodes/IPB+3 ..  ninodes/IPB+nblocks/BPB+4 .. size
package super

import (
	"fmt"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/util"
)

const SUPERSZ uint64 = 3 * 4 // on-disk size

type FsSuper struct {
	Disk    disk.Disk
	Size    uint64 // total blocks in the image
	Nblocks uint64 // data blocks
	Ninodes uint64 // inode slots
}

func badSuper(format string, a ...interface{}) error {
	return &common.CheckError{
		Err:    common.ErrBadSuper,
		Bnum:   common.SUPERBLK,
		Detail: fmt.Sprintf(format, a...),
	}
}

// Decode parses the superblock record at the start of blk.
func Decode(blk disk.Block) *FsSuper {
	ws := buf.MkBufLoad(addr.MkAddr(common.SUPERBLK, 0), 2*64, blk).Words()
	return &FsSuper{
		Size:    uint64(buf.Lo32(ws[0])),
		Nblocks: uint64(buf.Hi32(ws[0])),
		Ninodes: uint64(buf.Lo32(ws[1])),
	}
}

// ReadSuper reads the superblock of d and checks that the layout it
// describes fits in the image.
func ReadSuper(d disk.Disk) (*FsSuper, error) {
	nblk, err := d.Size()
	if err != nil {
		return nil, err
	}
	if nblk <= uint64(common.SUPERBLK) {
		return nil, badSuper("image has %d blocks", nblk)
	}
	blk, err := d.Read(common.SUPERBLK)
	if err != nil {
		return nil, err
	}
	fs := Decode(blk)
	fs.Disk = d
	util.DPrintf(1, "ReadSuper: size %d nblocks %d ninodes %d\n",
		fs.Size, fs.Nblocks, fs.Ninodes)

	if fs.Ninodes == 0 {
		return nil, badSuper("no inodes")
	}
	if fs.Nblocks == 0 {
		return nil, badSuper("no data blocks")
	}
	if fs.Size > nblk {
		return nil, badSuper("size %d exceeds image of %d blocks", fs.Size, nblk)
	}
	if fs.DataStart() > fs.Size {
		return nil, badSuper("data region starts at %d past size %d",
			fs.DataStart(), fs.Size)
	}
	return fs, nil
}

func (fs *FsSuper) InodeStart() common.Bnum {
	return common.INODESTART
}

func (fs *FsSuper) NInodeBlk() uint64 {
	return util.RoundUp(fs.Ninodes, common.INODEBLK)
}

func (fs *FsSuper) BitmapStart() common.Bnum {
	return common.Bnum(fs.Ninodes/common.INODEBLK + 3)
}

func (fs *FsSuper) NBitmapBlk() uint64 {
	return fs.DataStart() - fs.BitmapStart()
}

func (fs *FsSuper) DataStart() common.Bnum {
	return common.Bnum(fs.Ninodes/common.INODEBLK + fs.Nblocks/common.NBITBLOCK + 4)
}

func (fs *FsSuper) MaxBnum() common.Bnum {
	return common.Bnum(fs.Size)
}

// InDataRegion reports whether bn may be referenced by an inode.
func (fs *FsSuper) InDataRegion(bn common.Bnum) bool {
	return bn >= fs.DataStart() && bn < fs.MaxBnum()
}

func (fs *FsSuper) NInode() common.Inum {
	return common.Inum(fs.Ninodes)
}

func (fs *FsSuper) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkAddr(fs.InodeStart()+common.Bnum(uint64(inum)/common.INODEBLK),
		(uint64(inum)%common.INODEBLK)*common.INODESZ*8)
}

func (fs *FsSuper) String() string {
	return fmt.Sprintf("size %d nblocks %d ninodes %d: inodes@%d bitmap@%d data@%d",
		fs.Size, fs.Nblocks, fs.Ninodes, fs.InodeStart(), fs.BitmapStart(), fs.DataStart())
}
