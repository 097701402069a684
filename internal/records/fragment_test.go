package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegions(t *testing.T) {
	assert.Equal(t, Region("edit-row-42"), RowRegion(ListEdit, 42))
	assert.Equal(t, Region("delete-row-7"), RowRegion(ListDelete, 7))
	assert.Equal(t, Region("edit-list"), ListRegion(ListEdit))
	assert.Equal(t, Region("delete-list"), ListRegion(ListDelete))
}

func TestFragmentKindString(t *testing.T) {
	assert.Equal(t, "editing-row", KindEditingRow.String())
	assert.Equal(t, "FragmentKind(99)", FragmentKind(99).String())
}

func TestCommitErrorMessages(t *testing.T) {
	vanished := &CommitError{Kind: RecordVanished, ID: 42}
	assert.Equal(t, "record 42 no longer exists", vanished.Error())
	assert.Equal(t, "record_vanished", vanished.Kind.String())

	down := &CommitError{Kind: StoreUnavailable, ID: 3, Err: errStoreDown}
	assert.Equal(t, "update of record 3 failed: connection refused", down.Error())
	assert.ErrorIs(t, down, errStoreDown)
}
