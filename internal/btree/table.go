// Package btree traverses table and index B-trees: full scans, rowid
// point lookups, and index key probes. Every page is read on demand
// through pager.Reader; nothing is cached across calls (§5).
package btree

import (
	"context"

	"github.com/gostudent/sqlitereader/internal/pager"
	"github.com/gostudent/sqlitereader/internal/record"
)

// TableCell is one leaf cell of a table B-tree: a row identified by its
// rowid, with its record already decoded.
type TableCell struct {
	Rowid  uint64
	Record *record.Record
}

// parseTableLeafCell decodes the cell at byte offset cellOffset within
// page: varint payload_size, varint rowid, payload_bytes (§3).
func parseTableLeafCell(page []byte, cellOffset int) (*TableCell, error) {
	payloadSize, n := pager.ReadVarint(page, cellOffset)
	if n == 0 {
		return nil, pager.NewDatabaseError("parse_table_leaf_cell", pager.ErrInvalidVarint, map[string]interface{}{"field": "payload_size"})
	}
	pos := cellOffset + n

	rowid, m := pager.ReadVarint(page, pos)
	if m == 0 {
		return nil, pager.NewDatabaseError("parse_table_leaf_cell", pager.ErrInvalidVarint, map[string]interface{}{"field": "rowid"})
	}
	pos += m

	if pos+int(payloadSize) > len(page) {
		return nil, pager.NewDatabaseError("parse_table_leaf_cell", pager.ErrInsufficientData, map[string]interface{}{
			"need": pos + int(payloadSize), "have": len(page),
		})
	}
	payload := page[pos : pos+int(payloadSize)]

	rec, err := record.Parse(payload)
	if err != nil {
		return nil, err
	}
	return &TableCell{Rowid: rowid, Record: rec}, nil
}

// VisitFunc is called once per leaf row encountered by ScanTable, in
// rowid-ascending order. Returning stop=true ends the traversal early.
type VisitFunc func(cell *TableCell) (stop bool, err error)

// ScanTable walks the table B-tree rooted at rootPage depth-first: for an
// interior page it recurses left-to-right across every child named by a
// cell, then into the right-most child; for a leaf it invokes visit for
// each cell in stored (rowid-ascending) order. An unrecognized page kind
// halts only that subtree (§7, §9 item 3) rather than the whole scan.
func ScanTable(ctx context.Context, r *pager.Reader, rootPage uint32, visit VisitFunc) error {
	if rootPage == 0 {
		return nil
	}
	page, hdr, err := r.ReadPageHeader(ctx, rootPage)
	if err != nil {
		if dbErr, ok := err.(*pager.DatabaseError); ok && dbErr.Err == pager.ErrCorruptPage {
			return nil
		}
		return err
	}
	if !hdr.Kind.IsTable() {
		return nil
	}

	if hdr.Kind.IsInterior() {
		for i := 0; i < int(hdr.CellCount); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			off, err := hdr.CellOffset(page, i)
			if err != nil {
				return err
			}
			if off+4 > len(page) {
				return pager.NewDatabaseError("read_interior_table_cell", pager.ErrInsufficientData, nil)
			}
			childPage := pager.U32BE(page[off : off+4])
			stop, err := scanInterior(ctx, r, childPage, visit)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		_, err := scanInterior(ctx, r, hdr.RightMostChild, visit)
		return err
	}

	for i := 0; i < int(hdr.CellCount); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		off, err := hdr.CellOffset(page, i)
		if err != nil {
			return err
		}
		cell, err := parseTableLeafCell(page, off)
		if err != nil {
			return err
		}
		stop, err := visit(cell)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// scanInterior recurses into a child page, reporting whether the caller's
// visit function asked to stop so ScanTable's own loop can unwind early.
func scanInterior(ctx context.Context, r *pager.Reader, childPage uint32, visit VisitFunc) (stopped bool, err error) {
	stoppedEarly := false
	wrapped := func(cell *TableCell) (bool, error) {
		stop, err := visit(cell)
		if stop {
			stoppedEarly = true
		}
		return stop, err
	}
	if err := ScanTable(ctx, r, childPage, wrapped); err != nil {
		return false, err
	}
	return stoppedEarly, nil
}

// LookupRowid descends the table B-tree rooted at rootPage to find the
// single leaf cell whose rowid equals target, per C11: on an interior
// page, find the first cell whose key_rowid ≥ target and descend its
// left_child, else descend right_most_child; on a leaf, linear-scan for
// the matching rowid. Returns (nil, nil) if no such row exists.
func LookupRowid(ctx context.Context, r *pager.Reader, rootPage uint32, target uint64) (*TableCell, error) {
	if rootPage == 0 {
		return nil, nil
	}
	page, hdr, err := r.ReadPageHeader(ctx, rootPage)
	if err != nil {
		if dbErr, ok := err.(*pager.DatabaseError); ok && dbErr.Err == pager.ErrCorruptPage {
			return nil, nil
		}
		return nil, err
	}
	if !hdr.Kind.IsTable() {
		return nil, nil
	}

	if hdr.Kind.IsInterior() {
		for i := 0; i < int(hdr.CellCount); i++ {
			off, err := hdr.CellOffset(page, i)
			if err != nil {
				return nil, err
			}
			if off+4 > len(page) {
				return nil, pager.NewDatabaseError("read_interior_table_cell", pager.ErrInsufficientData, nil)
			}
			childPage := pager.U32BE(page[off : off+4])
			keyRowid, n := pager.ReadVarint(page, off+4)
			if n == 0 {
				return nil, pager.NewDatabaseError("read_interior_table_cell", pager.ErrInvalidVarint, nil)
			}
			if target <= keyRowid {
				return LookupRowid(ctx, r, childPage, target)
			}
		}
		return LookupRowid(ctx, r, hdr.RightMostChild, target)
	}

	for i := 0; i < int(hdr.CellCount); i++ {
		off, err := hdr.CellOffset(page, i)
		if err != nil {
			return nil, err
		}
		cell, err := parseTableLeafCell(page, off)
		if err != nil {
			return nil, err
		}
		if cell.Rowid == target {
			return cell, nil
		}
	}
	return nil, nil
}
