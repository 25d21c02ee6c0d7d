// Package claim records which inode uses each data block.
//
// Blocks reached through an inode's direct addresses and blocks reached
// through its indirect block (including the indirect block itself) are kept
// in separate sets, and duplicates are only detected within a set. A Tracker
// made with unified set shares one set between both kinds.
package claim

import (
	"fmt"

	"github.com/mit-pdos/go-fsck/common"
)

type Kind int

const (
	Direct Kind = iota
	Indirect
)

func (k Kind) String() string {
	if k == Direct {
		return "direct"
	}
	return "indirect"
}

func (k Kind) dupErr() error {
	if k == Direct {
		return common.ErrDirectDup
	}
	return common.ErrIndirectDup
}

type Tracker struct {
	sets    [2]map[common.Bnum]common.Inum // block -> claiming inode
	unified bool
}

func MkTracker(unified bool) *Tracker {
	t := &Tracker{unified: unified}
	t.sets[Direct] = make(map[common.Bnum]common.Inum)
	if unified {
		t.sets[Indirect] = t.sets[Direct]
	} else {
		t.sets[Indirect] = make(map[common.Bnum]common.Inum)
	}
	return t
}

// Claim records that inum uses bn through an address of the given kind. It
// fails if bn was already claimed in that set, by any inode including inum.
func (t *Tracker) Claim(kind Kind, bn common.Bnum, inum common.Inum) error {
	set := t.sets[kind]
	if owner, ok := set[bn]; ok {
		return common.MkBlockError(kind.dupErr(), inum, bn,
			fmt.Sprintf("already claimed by inode %d", owner))
	}
	set[bn] = inum
	return nil
}

// Claimed reports whether any inode claimed bn.
func (t *Tracker) Claimed(bn common.Bnum) bool {
	_, ok := t.Owner(bn)
	return ok
}

// Owner returns the inode that claimed bn, preferring a direct claim.
func (t *Tracker) Owner(bn common.Bnum) (common.Inum, bool) {
	if inum, ok := t.sets[Direct][bn]; ok {
		return inum, true
	}
	inum, ok := t.sets[Indirect][bn]
	return inum, ok
}

// Len is the number of blocks claimed in the set for kind.
func (t *Tracker) Len(kind Kind) int {
	return len(t.sets[kind])
}

func (t *Tracker) Unified() bool {
	return t.unified
}
