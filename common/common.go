package common

const (
	BlockSize uint64 = 512
	NBITBLOCK uint64 = BlockSize * 8 // bitmap bits per block
	INODESZ   uint64 = 64            // on-disk size
	INODEBLK  uint64 = BlockSize / INODESZ

	NDIRECT   uint64 = 12
	BNUMSZ    uint64 = 4 // 32-bit block numbers
	NINDIRECT uint64 = BlockSize / BNUMSZ

	DIRSIZ    uint64 = 14
	DIRENTSZ  uint64 = 2 + DIRSIZ
	DIRENTBLK uint64 = BlockSize / DIRENTSZ
)

type Inum uint64
type Bnum = uint64

const (
	NULLINUM Inum = 0
	ROOTINUM Inum = 1
	NULLBNUM Bnum = 0
)

// Fixed block numbers of the on-disk layout. Block 0 is unused.
const (
	SUPERBLK   Bnum = 1
	INODESTART Bnum = 2
)
