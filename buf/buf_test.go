package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
)

func TestMkBufLoad(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	blk[64] = 0xAB
	blk[127] = 0xCD
	b := MkBufLoad(addr.MkAddr(2, 64*8), common.INODESZ*8, blk)
	assert.Len(b.Data, int(common.INODESZ))
	assert.Equal(byte(0xAB), b.Data[0])
	assert.Equal(byte(0xCD), b.Data[63])

	assert.Panics(func() { MkBufLoad(addr.MkAddr(2, 3), 8, blk) })
}

func TestBnums(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	// little-endian 32-bit entries 0x01020304, 7, ..., last = 0xffffffff
	copy(blk[0:], []byte{0x04, 0x03, 0x02, 0x01, 7, 0, 0, 0})
	copy(blk[508:], []byte{0xff, 0xff, 0xff, 0xff})
	b := MkBlockBuf(40, blk)

	assert.Equal(common.Bnum(0x01020304), b.BnumGet(0))
	assert.Equal(common.Bnum(7), b.BnumGet(1))
	assert.Equal(common.Bnum(0), b.BnumGet(2))
	assert.Equal(common.Bnum(0xffffffff), b.BnumGet(common.NINDIRECT-1))

	bs := b.Bnums()
	assert.Len(bs, int(common.NINDIRECT))
	assert.Equal(common.Bnum(7), bs[1])
	assert.Equal(common.Bnum(0xffffffff), bs[127])
}

func TestHalf(t *testing.T) {
	assert := assert.New(t)
	w := uint64(0x0004000300020001)
	for i := uint64(0); i < 4; i++ {
		assert.Equal(uint16(i+1), Half(w, i))
	}
	assert.Equal(uint32(0x00020001), Lo32(w))
	assert.Equal(uint32(0x00040003), Hi32(w))
}

func TestBnumPut(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	b := MkBlockBuf(40, blk)
	b.BnumPut(1, 0xdeadbeef)
	b.BnumPut(0, 77)
	b.BnumPut(127, 5)
	assert.Equal(common.Bnum(77), b.BnumGet(0))
	assert.Equal(common.Bnum(0xdeadbeef), b.BnumGet(1), "neighbour untouched")
	assert.Equal([]byte{0xef, 0xbe, 0xad, 0xde}, blk[4:8], "writes through to the block")
	assert.Equal(common.Bnum(5), b.Bnums()[127])
}
