// buf holds views of sub-block disk objects (superblock, inodes, directory
// entries, block-number arrays) within blocks read from the image.
package buf

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
)

// A Buf is a read-only view of a disk object
type Buf struct {
	Addr addr.Addr
	Sz   uint64 // number of bits
	Data []byte
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// Load the bits of a disk block into a new buf, as specified by addr. Only
// byte-aligned objects are supported.
func MkBufLoad(addr addr.Addr, sz uint64, blk disk.Block) *Buf {
	if addr.Off%8 != 0 || sz%8 != 0 {
		panic("MkBufLoad: unaligned object")
	}
	bytefirst := addr.Off / 8
	bytelast := (addr.Off + sz - 1) / 8
	data := blk[bytefirst : bytelast+1]
	b := &Buf{
		Addr: addr,
		Sz:   sz,
		Data: data,
	}
	return b
}

// MkBlockBuf views a whole block read from blkno.
func MkBlockBuf(blkno common.Bnum, blk disk.Block) *Buf {
	return MkBufLoad(addr.MkAddr(blkno, 0), common.NBITBLOCK, blk)
}

// Words decodes the buf as little-endian 64-bit words.
func (buf *Buf) Words() []uint64 {
	n := uint64(len(buf.Data)) / 8
	dec := marshal.NewDec(buf.Data)
	ws := make([]uint64, n)
	for i := range ws {
		ws[i] = dec.GetInt()
	}
	return ws
}

// BnumGet returns the i-th 32-bit block number stored in the buf.
func (buf *Buf) BnumGet(i uint64) common.Bnum {
	off := (i / 2) * 8
	dec := marshal.NewDec(buf.Data[off : off+8])
	w := dec.GetInt()
	return common.Bnum(Lo32(w >> (32 * (i % 2))))
}

// Bnums decodes the whole buf as an array of 32-bit block numbers.
func (buf *Buf) Bnums() []common.Bnum {
	ws := buf.Words()
	bs := make([]common.Bnum, 0, 2*len(ws))
	for _, w := range ws {
		bs = append(bs, common.Bnum(Lo32(w)), common.Bnum(Hi32(w)))
	}
	return bs
}

func Lo32(w uint64) uint32 { return uint32(w & 0xffffffff) }
func Hi32(w uint64) uint32 { return uint32(w >> 32) }

// Half returns the i-th 16-bit field of w, counting from the low bits.
func Half(w uint64, i uint64) uint16 {
	return uint16(w >> (16 * i))
}

// BnumPut stores v as the i-th 32-bit block number of the buf.
func (buf *Buf) BnumPut(i uint64, v common.Bnum) {
	off := (i / 2) * 8
	w := marshal.NewDec(buf.Data[off : off+8]).GetInt()
	shift := 32 * (i % 2)
	w = w&^(uint64(0xffffffff)<<shift) | uint64(uint32(v))<<shift
	enc := marshal.NewEnc(8)
	enc.PutInt(w)
	copy(buf.Data[off:off+8], enc.Finish())
}
