// Package segfile manages the on-disk segment files of column-oriented
// append-only relations.
//
// A relation stores column col at concurrency slot c in the file
// "<base>.<segno>" with segno = col*SegnoMultiplier + c. Slot 0 is the
// utility slot and is not touched here.
package segfile

import (
	"fmt"
	"os"
)

const (
	// SegnoMultiplier spaces the per-column segment number ranges.
	SegnoMultiplier = 128

	// MaxConcurrency bounds the concurrency slots of one relation.
	MaxConcurrency = 128

	// MaxColumns bounds the columns of one relation.
	MaxColumns = 1600
)

// Segno computes the segment file number for a column at a concurrency
// slot.
func Segno(column, concurrency int) int {
	return column*SegnoMultiplier + concurrency
}

// SegPath renders the path of a segment file under base.
func SegPath(base string, segno int) string {
	return fmt.Sprintf("%s.%d", base, segno)
}

// UnlinkColumnOriented removes every segment file of a column-oriented
// relation rooted at base and reports how many files it removed.
//
// For each concurrency slot the column files are probed in column order
// starting at the slot's own file; a missing slot file means the slot was
// never used and its columns are skipped, and a missing column file ends
// that slot's scan. Absent files are therefore never an error; only a
// failing removal is.
func UnlinkColumnOriented(base string) (int, error) {
	removed := 0
	for c := 1; c < MaxConcurrency; c++ {
		if !exists(SegPath(base, c)) {
			continue
		}
		if err := os.Remove(SegPath(base, c)); err != nil {
			return removed, fmt.Errorf("segfile: unlink slot %d: %w", c, err)
		}
		removed++
		for col := 1; col < MaxColumns; col++ {
			path := SegPath(base, Segno(col, c))
			if !exists(path) {
				break
			}
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("segfile: unlink column %d slot %d: %w", col, c, err)
			}
			removed++
		}
	}
	return removed, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
