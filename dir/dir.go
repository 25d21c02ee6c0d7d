// Package dir decodes directory blocks and counts the references they make
// to inodes.
package dir

import (
	"bytes"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fsck/addr"
	"github.com/mit-pdos/go-fsck/buf"
	"github.com/mit-pdos/go-fsck/claim"
	"github.com/mit-pdos/go-fsck/common"
	"github.com/mit-pdos/go-fsck/disk"
)

// Dirent is an on-disk directory entry: a 16-bit inode number followed by a
// name of up to DIRSIZ bytes, NUL-padded when shorter.
type Dirent struct {
	Inum common.Inum
	Name [common.DIRSIZ]byte
}

func Decode(b *buf.Buf) Dirent {
	w := marshal.NewDec(b.Data).GetInt()
	de := Dirent{Inum: common.Inum(buf.Half(w, 0))}
	copy(de.Name[:], b.Data[2:common.DIRENTSZ])
	return de
}

func packLE(b []byte) uint64 {
	var w uint64
	for i := len(b) - 1; i >= 0; i-- {
		w = w<<8 | uint64(b[i])
	}
	return w
}

// Encode lays out an entry for inum. Names longer than DIRSIZ are truncated.
func Encode(inum common.Inum, name string) []byte {
	var nb [common.DIRSIZ]byte
	copy(nb[:], name)
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt(uint64(uint16(inum)) | packLE(nb[:6])<<16)
	enc.PutInt(packLE(nb[6:]))
	return enc.Finish()
}

// NameString is the name up to its first NUL.
func (de Dirent) NameString() string {
	n := de.Name[:]
	if i := bytes.IndexByte(n, 0); i >= 0 {
		n = n[:i]
	}
	return string(n)
}

func (de Dirent) IsDot() bool {
	return de.NameString() == "."
}

func (de Dirent) IsDotDot() bool {
	return de.NameString() == ".."
}

func (de Dirent) String() string {
	return fmt.Sprintf("%q -> %d", de.NameString(), de.Inum)
}

// Entry decodes the i-th entry of a directory block.
func Entry(blkno common.Bnum, blk disk.Block, i uint64) Dirent {
	a := addr.MkAddr(blkno, i*common.DIRENTSZ*8)
	return Decode(buf.MkBufLoad(a, common.DIRENTSZ*8, blk))
}

// Scan extracts the entries of a directory block.
//
// By default scanning stops at the first entry whose inode number exceeds
// ninodes; such an entry and everything after it in the block are treated as
// garbage. With strict set every entry is decoded, and a non-zero inode
// number that cannot name an inode slot fails with ErrInodeFree.
func Scan(blkno common.Bnum, blk disk.Block, ninodes uint64, strict bool) ([]Dirent, error) {
	var ents []Dirent
	for i := uint64(0); i < common.DIRENTBLK; i++ {
		de := Entry(blkno, blk, i)
		if uint64(de.Inum) > ninodes && !strict {
			break
		}
		if strict && de.Inum != common.NULLINUM && uint64(de.Inum) >= ninodes {
			return nil, common.MkBlockError(common.ErrInodeFree, de.Inum, blkno,
				fmt.Sprintf("entry %d names inode %d of %d", i, de.Inum, ninodes))
		}
		ents = append(ents, de)
	}
	return ents, nil
}

// Refs counts, per inode, the directory entries referring to it. Entries
// found in blocks reached through a directory's direct addresses and through
// its indirect block are counted separately.
type Refs struct {
	Direct   []uint64
	Indirect []uint64
	Named    []uint64 // entries other than "." and ".."
}

func MkRefs(ninodes uint64) *Refs {
	return &Refs{
		Direct:   make([]uint64, ninodes+1),
		Indirect: make([]uint64, ninodes+1),
		Named:    make([]uint64, ninodes+1),
	}
}

// Add counts the entries of one directory block. Unused entries (inode 0)
// are not references.
func (r *Refs) Add(kind claim.Kind, ents []Dirent) {
	for _, de := range ents {
		if de.Inum == common.NULLINUM || uint64(de.Inum) >= uint64(len(r.Direct)) {
			continue
		}
		if kind == claim.Direct {
			r.Direct[de.Inum]++
		} else {
			r.Indirect[de.Inum]++
		}
		if !de.IsDot() && !de.IsDotDot() {
			r.Named[de.Inum]++
		}
	}
}

// Total is the number of entries referring to inum.
func (r *Refs) Total(inum common.Inum) uint64 {
	return r.Direct[inum] + r.Indirect[inum]
}
