package btree

import (
	"context"

	"github.com/gostudent/sqlitereader/internal/pager"
)

// CountRows returns the number of rows stored under the table B-tree
// rooted at rootPage: the leaf's own cell count if the root is a leaf,
// or the sum of every descendant leaf's cell count if the root is
// interior. This is the corrected, recursive form of the planner's
// count(*) fast path (§4.12 step 1) rather than the root-only count the
// reference implementation actually reports for `.dbinfo`'s unrelated
// "number of tables" line (which is reproduced literally elsewhere, see
// SPEC_FULL.md §9).
func CountRows(ctx context.Context, r *pager.Reader, rootPage uint32) (int, error) {
	if rootPage == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	page, hdr, err := r.ReadPageHeader(ctx, rootPage)
	if err != nil {
		if dbErr, ok := err.(*pager.DatabaseError); ok && dbErr.Err == pager.ErrCorruptPage {
			return 0, nil
		}
		return 0, err
	}
	if !hdr.Kind.IsTable() {
		return 0, nil
	}
	if !hdr.Kind.IsInterior() {
		return int(hdr.CellCount), nil
	}

	total := 0
	for i := 0; i < int(hdr.CellCount); i++ {
		off, err := hdr.CellOffset(page, i)
		if err != nil {
			return 0, err
		}
		if off+4 > len(page) {
			return 0, pager.NewDatabaseError("count_rows", pager.ErrInsufficientData, nil)
		}
		childPage := pager.U32BE(page[off : off+4])
		n, err := CountRows(ctx, r, childPage)
		if err != nil {
			return 0, err
		}
		total += n
	}
	n, err := CountRows(ctx, r, hdr.RightMostChild)
	if err != nil {
		return 0, err
	}
	total += n
	return total, nil
}
