// Package mkfs lays out filesystem images in memory.
//
// A Builder produces consistent images: metadata blocks and every block
// handed to an inode are marked in the bitmap, files' link counts track their
// directory entries, and directories start with "." and "..". The low-level
// setters (PutInode, SetBit, PutDirent, Block, ...) bypass that bookkeeping,
// which is how tests produce images with a single, known inconsistency.
package mkfs

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/dir"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/super"
	"github.com/mit-pdos/go-fsck/util"
)

type Builder struct {
	fs        *super.FsSuper
	data      []byte
	nextBlock common.Bnum
	nextInum  common.Inum
}

// MkBuilder lays out an empty filesystem of size blocks with a root
// directory. It panics if the metadata does not fit.
func MkBuilder(size, nblocks, ninodes uint64) *Builder {
	fs := &super.FsSuper{Size: size, Nblocks: nblocks, Ninodes: ninodes}
	if ninodes <= uint64(common.ROOTINUM) || fs.DataStart() >= size {
		panic(fmt.Errorf("MkBuilder: no room for root in %v", fs))
	}
	b := &Builder{
		fs:        fs,
		data:      make([]byte, size*common.BlockSize),
		nextBlock: fs.DataStart(),
		nextInum:  common.ROOTINUM,
	}
	fs.Disk = disk.NewMemDisk(b.data)

	enc := marshal.NewEnc(16)
	enc.PutInt(size | nblocks<<32)
	enc.PutInt(ninodes)
	copy(b.Block(common.SUPERBLK), enc.Finish())
	for bn := common.Bnum(0); bn < fs.DataStart(); bn++ {
		b.SetBit(bn)
	}

	root := b.Ialloc(inode.T_DIR)
	b.initDir(root, root)
	util.DPrintf(5, "MkBuilder: %v\n", fs)
	return b
}

// Default lays out a filesystem shaped like xv6's fs.img.
func Default() *Builder {
	return MkBuilder(1024, 995, 200)
}

func (b *Builder) Super() *super.FsSuper {
	return b.fs
}

// Image returns a copy of the image built so far.
func (b *Builder) Image() []byte {
	img := make([]byte, len(b.data))
	copy(img, b.data)
	return img
}

// Block returns block bn of the image for direct modification.
func (b *Builder) Block(bn common.Bnum) disk.Block {
	return b.data[bn*common.BlockSize : (bn+1)*common.BlockSize]
}

func (b *Builder) bitmapByte(bn common.Bnum) (*byte, byte) {
	ba := addr.MkBitAddr(b.fs.BitmapStart(), bn)
	if ba.Blkno >= b.fs.DataStart() {
		panic(fmt.Errorf("bitmap has no bit for block %d", bn))
	}
	return &b.Block(ba.Blkno)[ba.ByteOff()], byte(1) << (ba.Off % 8)
}

func (b *Builder) SetBit(bn common.Bnum) {
	p, mask := b.bitmapByte(bn)
	*p |= mask
}

func (b *Builder) ClearBit(bn common.Bnum) {
	p, mask := b.bitmapByte(bn)
	*p &^= mask
}

// Balloc hands out the next free data block, zeroed and marked allocated.
func (b *Builder) Balloc() common.Bnum {
	if b.nextBlock >= b.fs.MaxBnum() {
		panic("Balloc: out of blocks")
	}
	bn := b.nextBlock
	b.nextBlock++
	b.SetBit(bn)
	return bn
}

// Ialloc allocates the next inode slot with type t and no blocks.
func (b *Builder) Ialloc(t inode.Itype) common.Inum {
	if b.nextInum >= b.fs.NInode() {
		panic("Ialloc: out of inodes")
	}
	inum := b.nextInum
	b.nextInum++
	b.PutInode(&inode.Dinode{Inum: inum, Type: t})
	return inum
}

func (b *Builder) Inode(inum common.Inum) *inode.Dinode {
	ip, err := inode.ReadInode(b.fs, inum)
	if err != nil {
		panic(err)
	}
	return ip
}

// PutInode writes ip into its slot of the inode table.
func (b *Builder) PutInode(ip *inode.Dinode) {
	a := b.fs.Inum2Addr(ip.Inum)
	copy(b.Block(a.Blkno)[a.ByteOff():], ip.Encode())
}

// SetInode applies f to inode inum and writes it back.
func (b *Builder) SetInode(inum common.Inum, f func(ip *inode.Dinode)) {
	ip := b.Inode(inum)
	f(ip)
	b.PutInode(ip)
}

func (b *Builder) indirect(ip *inode.Dinode) *buf.Buf {
	ind := ip.Indirect()
	return buf.MkBlockBuf(ind, b.Block(ind))
}

// Blocks lists the content blocks of inum: direct blocks, then the blocks
// listed by its indirect block.
func (b *Builder) Blocks(inum common.Inum) []common.Bnum {
	ip := b.Inode(inum)
	bns := append([]common.Bnum(nil), ip.Direct()...)
	if ip.Indirect() != common.NULLBNUM {
		for _, bn := range b.indirect(ip).Bnums() {
			if bn == common.NULLBNUM {
				break
			}
			bns = append(bns, bn)
		}
	}
	return bns
}

// AddBlock allocates a block and appends it to inum, spilling into the
// indirect block once the direct addresses are used up.
func (b *Builder) AddBlock(inum common.Inum) common.Bnum {
	ip := b.Inode(inum)
	n := uint64(len(b.Blocks(inum)))
	if n >= common.NDIRECT+common.NINDIRECT {
		panic("AddBlock: file too large")
	}
	bn := b.Balloc()
	if n < common.NDIRECT {
		ip.Addrs[n] = bn
	} else {
		if ip.Indirect() == common.NULLBNUM {
			ip.Addrs[common.NDIRECT] = b.Balloc()
		}
		b.indirect(ip).BnumPut(n-common.NDIRECT, bn)
	}
	ip.Size = uint32((n + 1) * common.BlockSize)
	b.PutInode(ip)
	return bn
}

func (b *Builder) PutDirent(bn common.Bnum, i uint64, inum common.Inum, name string) {
	copy(b.Block(bn)[i*common.DIRENTSZ:], dir.Encode(inum, name))
}

func (b *Builder) Dirent(bn common.Bnum, i uint64) dir.Dirent {
	return dir.Entry(bn, b.Block(bn), i)
}

func (b *Builder) initDir(inum, parent common.Inum) {
	b.SetInode(inum, func(ip *inode.Dinode) { ip.Nlink = 1 })
	bn := b.AddBlock(inum)
	b.PutDirent(bn, 0, inum, ".")
	b.PutDirent(bn, 1, parent, "..")
}

// addEntry puts name -> inum in the first free slot of directory parent,
// growing it by a block if it is full.
func (b *Builder) addEntry(parent common.Inum, name string, inum common.Inum) {
	for _, bn := range b.Blocks(parent) {
		for i := uint64(0); i < common.DIRENTBLK; i++ {
			if b.Dirent(bn, i).Inum == common.NULLINUM {
				b.PutDirent(bn, i, inum, name)
				return
			}
		}
	}
	bn := b.AddBlock(parent)
	b.PutDirent(bn, 0, inum, name)
}

// Link adds an entry for inum to parent. A file's link count follows its
// entries; other link counts are left alone.
func (b *Builder) Link(parent common.Inum, name string, inum common.Inum) {
	b.addEntry(parent, name, inum)
	b.SetInode(inum, func(ip *inode.Dinode) {
		if ip.Type == inode.T_FILE {
			ip.Nlink++
		}
	})
}

func (b *Builder) Mkdir(parent common.Inum, name string) common.Inum {
	inum := b.Ialloc(inode.T_DIR)
	b.initDir(inum, parent)
	b.Link(parent, name, inum)
	return inum
}

// Create makes a file of nblocks blocks in parent.
func (b *Builder) Create(parent common.Inum, name string, nblocks uint64) common.Inum {
	inum := b.Ialloc(inode.T_FILE)
	for i := uint64(0); i < nblocks; i++ {
		b.AddBlock(inum)
	}
	b.Link(parent, name, inum)
	return inum
}

func (b *Builder) Mknod(parent common.Inum, name string, major, minor uint16) common.Inum {
	inum := b.Ialloc(inode.T_DEV)
	b.SetInode(inum, func(ip *inode.Dinode) {
		ip.Major = major
		ip.Minor = minor
		ip.Nlink = 1
	})
	b.Link(parent, name, inum)
	return inum
}

// FirstBlock is the first data block of inum.
func (b *Builder) FirstBlock(inum common.Inum) common.Bnum {
	return b.Inode(inum).Addrs[0]
}

// Free returns the number of unallocated data blocks left.
func (b *Builder) Free() uint64 {
	return util.Min(b.fs.MaxBnum()-b.nextBlock, b.fs.Nblocks)
}
