package alloc

import (
	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
	"github.com/mit-pdos/go-fsck/super"
	"github.com/mit-pdos/go-fsck/util"
)

// Status is the outcome of validating a block number against the layout and
// the allocation bitmap.
type Status int

const (
	StatusOK Status = iota
	StatusOutOfBounds
	StatusMarkedFree
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOutOfBounds:
		return "out of bounds"
	case StatusMarkedFree:
		return "marked free"
	}
	return "unknown"
}

// Alloc is a read-only view of the block allocation bitmap. Bit n
// corresponds to block n of the whole image, bit n%8 of byte n/8.
type Alloc struct {
	fs    *super.FsSuper
	start common.Bnum
	blks  []disk.Block
}

// MkAlloc loads the bitmap blocks of fs. Bitmap blocks past the end of the
// image are treated as all-free.
func MkAlloc(fs *super.FsSuper) (*Alloc, error) {
	a := &Alloc{
		fs:    fs,
		start: fs.BitmapStart(),
	}
	sz, err := fs.Disk.Size()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < fs.NBitmapBlk() && a.start+i < sz; i++ {
		blk, err := fs.Disk.Read(a.start + i)
		if err != nil {
			return nil, err
		}
		a.blks = append(a.blks, blk)
	}
	util.DPrintf(5, "MkAlloc: %d bitmap blocks at %d\n", len(a.blks), a.start)
	return a, nil
}

// IsUsed reports whether the bitmap marks block n allocated.
func (a *Alloc) IsUsed(n common.Bnum) bool {
	ba := addr.MkBitAddr(a.start, n)
	i := ba.Blkno - a.start
	if i >= uint64(len(a.blks)) {
		return false
	}
	b := a.blks[i][ba.ByteOff()]
	return b&(1<<(ba.Off%8)) != 0
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumUsed counts the blocks of the image marked allocated.
func (a *Alloc) NumUsed() uint64 {
	var n uint64
	size := a.fs.MaxBnum()
	for i, blk := range a.blks {
		for j, b := range blk {
			first := uint64(i)*common.NBITBLOCK + uint64(j)*8
			if first >= size {
				return n
			}
			if first+8 > size {
				b = b & byte(1<<(size-first)-1)
			}
			n += popCnt(b)
		}
	}
	return n
}

// Validate checks a block number referenced by an inode. NULLBNUM is an
// unused slot and always valid.
func (a *Alloc) Validate(bn common.Bnum) Status {
	if bn == common.NULLBNUM {
		return StatusOK
	}
	if !a.fs.InDataRegion(bn) {
		return StatusOutOfBounds
	}
	if !a.IsUsed(bn) {
		return StatusMarkedFree
	}
	return StatusOK
}
