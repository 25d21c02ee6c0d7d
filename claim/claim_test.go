package claim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fsck/common"
)

func TestClaimDuplicate(t *testing.T) {
	assert := assert.New(t)
	tr := MkTracker(false)
	assert.NoError(tr.Claim(Direct, 30, 1))
	assert.NoError(tr.Claim(Direct, 31, 2))

	err := tr.Claim(Direct, 30, 2)
	assert.True(errors.Is(err, common.ErrDirectDup))
	var ce *common.CheckError
	if assert.True(errors.As(err, &ce)) {
		assert.Equal(common.Inum(2), ce.Inum)
		assert.Equal(common.Bnum(30), ce.Bnum)
	}

	assert.True(errors.Is(tr.Claim(Direct, 31, 2), common.ErrDirectDup),
		"same inode twice is a duplicate too")
}

func TestClaimSplitSets(t *testing.T) {
	assert := assert.New(t)
	tr := MkTracker(false)
	assert.NoError(tr.Claim(Direct, 40, 3))
	assert.NoError(tr.Claim(Indirect, 40, 4), "sets are independent")
	assert.True(errors.Is(tr.Claim(Indirect, 40, 5), common.ErrIndirectDup))

	assert.True(tr.Claimed(40))
	assert.False(tr.Claimed(41))
	owner, ok := tr.Owner(40)
	assert.True(ok)
	assert.Equal(common.Inum(3), owner)
	assert.Equal(1, tr.Len(Direct))
	assert.Equal(1, tr.Len(Indirect))
}

func TestClaimUnified(t *testing.T) {
	assert := assert.New(t)
	tr := MkTracker(true)
	assert.True(tr.Unified())
	assert.NoError(tr.Claim(Direct, 40, 3))
	err := tr.Claim(Indirect, 40, 4)
	assert.True(errors.Is(err, common.ErrIndirectDup),
		"reported as the kind of the second claim")
	assert.NoError(tr.Claim(Indirect, 41, 4))
	assert.True(errors.Is(tr.Claim(Direct, 41, 5), common.ErrDirectDup))
}
