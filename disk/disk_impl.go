package disk

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/util"
)

var _ Disk = (*fileDisk)(nil)

// fileDisk is an image file mapped read-only into memory.
type fileDisk struct {
	fd        int
	data      []byte
	numBlocks uint64
}

func notFound(path string, err error) error {
	return fmt.Errorf("%w (%s: %v)", common.ErrImageNotFound, path, err)
}

// NewFileDisk maps the image at path. Any failure to open or map it is
// reported as common.ErrImageNotFound. A trailing partial block is not
// addressable.
func NewFileDisk(path string) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, notFound(path, err)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, notFound(path, err)
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFREG {
		unix.Close(fd)
		return nil, notFound(path, fmt.Errorf("not a regular file"))
	}
	if stat.Size == 0 {
		unix.Close(fd)
		return nil, notFound(path, fmt.Errorf("empty image"))
	}
	data, err := unix.Mmap(fd, 0, int(stat.Size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		unix.Close(fd)
		return nil, notFound(path, err)
	}
	util.DPrintf(1, "NewFileDisk: mapped %s, %d bytes\n", path, len(data))
	return &fileDisk{
		fd:        fd,
		data:      data,
		numBlocks: uint64(len(data)) / BlockSize,
	}, nil
}

func (d *fileDisk) Read(a uint64) (Block, error) {
	return readBlock(d.data, d.numBlocks, a), nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *fileDisk) Close() error {
	if d.data == nil {
		return nil
	}
	err := unix.Munmap(d.data)
	d.data = nil
	d.numBlocks = 0
	if cerr := unix.Close(d.fd); err == nil {
		err = cerr
	}
	return err
}

// readBlock copies block a out of an image of nblocks blocks.
func readBlock(data []byte, nblocks uint64, a uint64) Block {
	if a >= nblocks {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	buf := make(Block, BlockSize)
	copy(buf, data[a*BlockSize:(a+1)*BlockSize])
	return buf
}

/////////////////////////

var _ Disk = memDisk{}

// memDisk is an image held in a byte slice. The slice is not copied and
// must not be modified while the disk is in use.
type memDisk struct {
	data []byte
}

func NewMemDisk(data []byte) memDisk {
	return memDisk{data: data}
}

func (d memDisk) Read(a uint64) (Block, error) {
	return readBlock(d.data, uint64(len(d.data))/BlockSize, a), nil
}

func (d memDisk) Size() (uint64, error) {
	return uint64(len(d.data)) / BlockSize, nil
}

func (d memDisk) Close() error { return nil }
