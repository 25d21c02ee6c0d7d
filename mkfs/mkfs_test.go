package mkfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-fsck/alloc"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/inode"
	"github.com/mit-pdos/go-fsck/super"
)

func TestEmpty(t *testing.T) {
	assert := assert.New(t)
	b := Default()
	fs, err := super.ReadSuper(disk.NewMemDisk(b.Image()))
	require.NoError(t, err)
	assert.Equal(uint64(1024), fs.Size)
	assert.Equal(common.Bnum(29), fs.DataStart())

	root := b.Inode(common.ROOTINUM)
	assert.Equal(inode.T_DIR, root.Type)
	assert.Equal(uint16(1), root.Nlink)
	assert.Equal([]common.Bnum{29}, root.Direct())
	assert.True(b.Dirent(29, 0).IsDot())
	assert.Equal(common.ROOTINUM, b.Dirent(29, 0).Inum)
	assert.True(b.Dirent(29, 1).IsDotDot())
	assert.Equal(common.ROOTINUM, b.Dirent(29, 1).Inum)

	a, err := alloc.MkAlloc(fs)
	require.NoError(t, err)
	assert.Equal(uint64(30), a.NumUsed(), "metadata and the root block")
	assert.True(a.IsUsed(29))
	assert.False(a.IsUsed(30))
	assert.Equal(uint64(1024-30), b.Free())
}

func TestCreateSpillsIntoIndirect(t *testing.T) {
	assert := assert.New(t)
	b := Default()
	f := b.Create(common.ROOTINUM, "big", common.NDIRECT+3)
	ip := b.Inode(f)
	assert.Equal(inode.T_FILE, ip.Type)
	assert.Equal(uint16(1), ip.Nlink)
	assert.Len(ip.Direct(), int(common.NDIRECT))
	assert.NotEqual(common.NULLBNUM, ip.Indirect())
	assert.Len(b.Blocks(f), int(common.NDIRECT+3))
	assert.Equal(uint32((common.NDIRECT+3)*common.BlockSize), ip.Size)
}

func TestLinkAndMkdir(t *testing.T) {
	assert := assert.New(t)
	b := Default()
	d := b.Mkdir(common.ROOTINUM, "d")
	f := b.Create(d, "f", 1)
	b.Link(common.ROOTINUM, "f2", f)
	dev := b.Mknod(common.ROOTINUM, "console", 1, 1)

	assert.Equal(uint16(2), b.Inode(f).Nlink, "files count their entries")
	assert.Equal(uint16(1), b.Inode(d).Nlink)
	assert.Equal(uint16(1), b.Inode(dev).Nlink)
	assert.Equal(d, b.Dirent(b.FirstBlock(common.ROOTINUM), 2).Inum)
	assert.Equal("d", b.Dirent(b.FirstBlock(common.ROOTINUM), 2).NameString())
	assert.Equal(common.ROOTINUM, b.Dirent(b.FirstBlock(d), 1).Inum)
}

func TestDirGrows(t *testing.T) {
	b := Default()
	for i := 0; i < int(common.DIRENTBLK); i++ {
		b.Mknod(common.ROOTINUM, "n", 1, uint16(i))
	}
	assert.Len(t, b.Blocks(common.ROOTINUM), 2, "32 entries plus . and .. take two blocks")
}

func TestBits(t *testing.T) {
	b := Default()
	fs := b.Super()
	b.ClearBit(29)
	b.SetBit(500)
	a, err := alloc.MkAlloc(&super.FsSuper{Disk: disk.NewMemDisk(b.Image()),
		Size: fs.Size, Nblocks: fs.Nblocks, Ninodes: fs.Ninodes})
	require.NoError(t, err)
	assert.False(t, a.IsUsed(29))
	assert.True(t, a.IsUsed(500))
}

func TestTooSmall(t *testing.T) {
	assert.Panics(t, func() { MkBuilder(10, 5, 1) }, "no slot for root")
	assert.Panics(t, func() { MkBuilder(5, 5, 8) }, "no data region")
}
