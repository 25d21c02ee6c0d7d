package inode

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/super"
)

type Itype uint16

const (
	T_UNUSED Itype = 0
	T_FILE   Itype = 1
	T_DIR    Itype = 2
	T_DEV    Itype = 3
)

// Valid reports whether an allocated inode may have type t.
func (t Itype) Valid() bool {
	return t == T_FILE || t == T_DIR || t == T_DEV
}

func (t Itype) String() string {
	switch t {
	case T_UNUSED:
		return "unused"
	case T_FILE:
		return "file"
	case T_DIR:
		return "dir"
	case T_DEV:
		return "dev"
	}
	return fmt.Sprintf("type(%d)", uint16(t))
}

// Dinode is the on-disk inode:
//
//	type, major, minor, nlink uint16; size uint32; addrs [NDIRECT+1]uint32
type Dinode struct {
	Inum  common.Inum
	Type  Itype
	Major uint16 // T_DEV only
	Minor uint16 // T_DEV only
	Nlink uint16
	Size  uint32
	Addrs [common.NDIRECT + 1]common.Bnum
}

func Decode(inum common.Inum, b *buf.Buf) *Dinode {
	ws := b.Words()
	ip := &Dinode{
		Inum:  inum,
		Type:  Itype(buf.Half(ws[0], 0)),
		Major: buf.Half(ws[0], 1),
		Minor: buf.Half(ws[0], 2),
		Nlink: buf.Half(ws[0], 3),
		Size:  buf.Lo32(ws[1]),
	}
	ip.Addrs[0] = common.Bnum(buf.Hi32(ws[1]))
	for k := uint64(2); k < uint64(len(ws)); k++ {
		ip.Addrs[2*k-3] = common.Bnum(buf.Lo32(ws[k]))
		ip.Addrs[2*k-2] = common.Bnum(buf.Hi32(ws[k]))
	}
	return ip
}

func (ip *Dinode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt(uint64(ip.Type) | uint64(ip.Major)<<16 |
		uint64(ip.Minor)<<32 | uint64(ip.Nlink)<<48)
	enc.PutInt(uint64(ip.Size) | uint64(uint32(ip.Addrs[0]))<<32)
	for i := uint64(1); i < common.NDIRECT+1; i += 2 {
		enc.PutInt(uint64(uint32(ip.Addrs[i])) | uint64(uint32(ip.Addrs[i+1]))<<32)
	}
	return enc.Finish()
}

// ReadInode loads inode inum from the inode table.
func ReadInode(fs *super.FsSuper, inum common.Inum) (*Dinode, error) {
	if inum >= fs.NInode() {
		panic(fmt.Errorf("ReadInode: inum %d out of range", inum))
	}
	a := fs.Inum2Addr(inum)
	blk, err := fs.Disk.Read(a.Blkno)
	if err != nil {
		return nil, err
	}
	return Decode(inum, buf.MkBufLoad(a, common.INODESZ*8, blk)), nil
}

// Direct returns the direct addresses in use, up to the first NULLBNUM.
func (ip *Dinode) Direct() []common.Bnum {
	for i := uint64(0); i < common.NDIRECT; i++ {
		if ip.Addrs[i] == common.NULLBNUM {
			return ip.Addrs[:i]
		}
	}
	return ip.Addrs[:common.NDIRECT]
}

func (ip *Dinode) Indirect() common.Bnum {
	return ip.Addrs[common.NDIRECT]
}

func (ip *Dinode) IsAllocated() bool {
	return ip.Type != T_UNUSED
}

func (ip *Dinode) String() string {
	return fmt.Sprintf("inode %d: %v nlink %d size %d addrs %v",
		ip.Inum, ip.Type, ip.Nlink, ip.Size, ip.Addrs)
}
