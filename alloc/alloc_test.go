package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/super"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

// mkAlloc builds a 64-block image with 16 inodes: bitmap at block 5, data
// from block 6. Blocks in used are marked allocated.
func mkAlloc(t *testing.T, used ...uint64) *Alloc {
	data := make([]byte, 64*disk.BlockSize)
	fs := &super.FsSuper{Disk: disk.NewMemDisk(data), Size: 64, Nblocks: 58, Ninodes: 16}
	bm := data[fs.BitmapStart()*disk.BlockSize:]
	for _, n := range used {
		bm[n/8] |= 1 << (n % 8)
	}
	a, err := MkAlloc(fs)
	require.NoError(t, err)
	return a
}

func TestIsUsed(t *testing.T) {
	assert := assert.New(t)
	a := mkAlloc(t, 0, 1, 7, 8, 63)
	assert.True(a.IsUsed(0))
	assert.True(a.IsUsed(7))
	assert.True(a.IsUsed(8))
	assert.False(a.IsUsed(9))
	assert.True(a.IsUsed(63))
	assert.False(a.IsUsed(5000), "past the bitmap reads as free")
	assert.Equal(uint64(5), a.NumUsed())
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)
	a := mkAlloc(t, 5, 6, 7)
	assert.Equal(StatusOK, a.Validate(0), "unused slot")
	assert.Equal(StatusOutOfBounds, a.Validate(5), "bitmap block")
	assert.Equal(StatusOK, a.Validate(6), "first data block")
	assert.Equal(StatusOK, a.Validate(7))
	assert.Equal(StatusMarkedFree, a.Validate(8))
	assert.Equal(StatusOutOfBounds, a.Validate(64))
	assert.Equal("marked free", StatusMarkedFree.String())
}

func TestNumUsedIgnoresBitsPastSize(t *testing.T) {
	a := mkAlloc(t, 2, 64, 65, 100)
	assert.Equal(t, uint64(1), a.NumUsed())
}

func TestLoadsBitmapBlocks(t *testing.T) {
	assert := assert.New(t)
	a := mkAlloc(t)
	assert.Len(a.blks, int(a.fs.NBitmapBlk()))

	// 9000 data blocks need three bitmap blocks, the last past the image
	data := make([]byte, 7*disk.BlockSize)
	fs := &super.FsSuper{Disk: disk.NewMemDisk(data), Size: 7, Nblocks: 9000, Ninodes: 16}
	a, err := MkAlloc(fs)
	require.NoError(t, err)
	assert.Equal(uint64(3), fs.NBitmapBlk())
	assert.Len(a.blks, 2)
	assert.False(a.IsUsed(9000))
}
