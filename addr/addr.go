package addr

import (
	"github.com/mit-pdos/go-fsck/common"
)

// Addr identifies the start of a disk object.
//
// Blkno is the block number containing the object, and Off is the location of
// the object within the block (expressed as a bit offset). The size of the
// object is determined by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bits
}

// ByteOff is the offset of the object within its block, in bytes.
func (a Addr) ByteOff() uint64 {
	return a.Off / 8
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkBitAddr locates bit n of a bitmap that starts at block start.
func MkBitAddr(start common.Bnum, n uint64) Addr {
	bit := n % common.NBITBLOCK
	i := n / common.NBITBLOCK
	addr := MkAddr(start+common.Bnum(i), bit)
	return addr
}
