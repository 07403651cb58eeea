package segfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, base string, segno int) {
	t.Helper()
	require.NoError(t, os.WriteFile(SegPath(base, segno), nil, 0o644))
}

func newBase(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "16385")
}

func TestUnlinkNoFiles(t *testing.T) {
	removed, err := UnlinkColumnOriented(newBase(t))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestUnlinkFourColumnsOneSlot(t *testing.T) {
	base := newBase(t)
	touch(t, base, 1)
	for col := 1; col <= 3; col++ {
		touch(t, base, Segno(col, 1))
	}

	removed, err := UnlinkColumnOriented(base)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)
	assert.NoFileExists(t, SegPath(base, 1))
	assert.NoFileExists(t, SegPath(base, Segno(3, 1)))
}

func TestUnlinkStopsAtColumnGap(t *testing.T) {
	base := newBase(t)
	touch(t, base, 1)
	touch(t, base, Segno(1, 1))
	// Column 2 missing; column 3 must survive the scan.
	touch(t, base, Segno(3, 1))

	removed, err := UnlinkColumnOriented(base)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.FileExists(t, SegPath(base, Segno(3, 1)))
}

func TestUnlinkSkipsUnusedSlots(t *testing.T) {
	base := newBase(t)
	// Slot file absent, so the slot's column files are not probed.
	touch(t, base, Segno(1, 2))

	removed, err := UnlinkColumnOriented(base)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.FileExists(t, SegPath(base, Segno(1, 2)))
}

func TestUnlinkTwoSlotsThreeColumns(t *testing.T) {
	base := newBase(t)
	for _, c := range []int{1, 5} {
		touch(t, base, c)
		touch(t, base, Segno(1, c))
		touch(t, base, Segno(2, c))
	}

	removed, err := UnlinkColumnOriented(base)
	require.NoError(t, err)
	assert.Equal(t, 6, removed)
}

func TestUnlinkAllSlotsNoColumns(t *testing.T) {
	base := newBase(t)
	for c := 1; c < MaxConcurrency; c++ {
		touch(t, base, c)
	}

	removed, err := UnlinkColumnOriented(base)
	require.NoError(t, err)
	assert.Equal(t, 127, removed)
}

func TestSegno(t *testing.T) {
	assert.Equal(t, 1, Segno(0, 1))
	assert.Equal(t, 129, Segno(1, 1))
	assert.Equal(t, 261, Segno(2, 5))
}
