package disk

import (
	"github.com/mit-pdos/go-fsck/common"
)

// Block is a 512-byte buffer
type Block = []byte

const BlockSize uint64 = common.BlockSize

// Disk provides read-only access to a filesystem image, one block at a time.
type Disk interface {
	// Read reads a disk block by address into a fresh buffer
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// Size reports how big the disk is, in whole blocks
	Size() (uint64, error)

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}
