package btree

import (
	"bytes"
	"context"
	"sort"

	"github.com/gostudent/sqlitereader/internal/pager"
	"github.com/gostudent/sqlitereader/internal/record"
)

// indexKeyBytes extracts the byte representation of an index cell's first
// indexed column, used for the lexicographic comparisons §3/§4.10 require.
// Text/Blob values compare on their raw bytes; anything else (an indexed
// integer column) falls back to its decimal rendering, which is the only
// form a WHERE literal can take in this engine's restricted grammar.
func indexKeyBytes(v record.Value) []byte {
	switch v.Kind {
	case record.KindText, record.KindBlob:
		return v.Bytes
	default:
		return []byte(v.String())
	}
}

// rowidFromLastValue extracts the trailing rowid carried by an index leaf
// cell's record, per §3: "last value in record is the rowid".
func rowidFromLastValue(rec *record.Record) uint64 {
	if len(rec.Values) == 0 {
		return 0
	}
	last := rec.Values[len(rec.Values)-1]
	if last.Kind == record.KindInt {
		return uint64(last.Int)
	}
	return 0
}

func parseIndexLeafCell(page []byte, cellOffset int) (*record.Record, error) {
	payloadSize, n := pager.ReadVarint(page, cellOffset)
	if n == 0 {
		return nil, pager.NewDatabaseError("parse_index_leaf_cell", pager.ErrInvalidVarint, nil)
	}
	pos := cellOffset + n
	if pos+int(payloadSize) > len(page) {
		return nil, pager.NewDatabaseError("parse_index_leaf_cell", pager.ErrInsufficientData, nil)
	}
	return record.Parse(page[pos : pos+int(payloadSize)])
}

func parseIndexInteriorCell(page []byte, cellOffset int) (childPage uint32, rec *record.Record, err error) {
	if cellOffset+4 > len(page) {
		return 0, nil, pager.NewDatabaseError("parse_index_interior_cell", pager.ErrInsufficientData, nil)
	}
	childPage = pager.U32BE(page[cellOffset : cellOffset+4])
	payloadSize, n := pager.ReadVarint(page, cellOffset+4)
	if n == 0 {
		return 0, nil, pager.NewDatabaseError("parse_index_interior_cell", pager.ErrInvalidVarint, nil)
	}
	pos := cellOffset + 4 + n
	if pos+int(payloadSize) > len(page) {
		return 0, nil, pager.NewDatabaseError("parse_index_interior_cell", pager.ErrInsufficientData, nil)
	}
	rec, err = record.Parse(page[pos : pos+int(payloadSize)])
	return childPage, rec, err
}

// ProbeIndex descends the index B-tree rooted at rootPage looking for
// whereValue among the first indexed column's keys, per C10. It is the
// uncapped variant of the two the reference implementation carried (§9
// item 2): every matching cell of the leaf it reaches is collected, with
// no limit on the number of rowids. At each interior page it descends
// exactly one child (the first whose divider key is >= whereValue, else
// the right-most child), so matches stored in an interior cell's own key
// or in a later sibling subtree are not collected. Returns the matching
// rowids, deduplicated and sorted ascending.
func ProbeIndex(ctx context.Context, r *pager.Reader, rootPage uint32, whereValue string) ([]uint64, error) {
	target := []byte(whereValue)
	var rowids []uint64
	if err := probeIndexPage(ctx, r, rootPage, target, &rowids); err != nil {
		return nil, err
	}
	sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
	rowids = dedupSorted(rowids)
	return rowids, nil
}

func dedupSorted(in []uint64) []uint64 {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func probeIndexPage(ctx context.Context, r *pager.Reader, pageNum uint32, target []byte, out *[]uint64) error {
	if pageNum == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	page, hdr, err := r.ReadPageHeader(ctx, pageNum)
	if err != nil {
		if dbErr, ok := err.(*pager.DatabaseError); ok && dbErr.Err == pager.ErrCorruptPage {
			return nil
		}
		return err
	}

	switch hdr.Kind {
	case pager.KindInteriorIndex:
		descended := false
		for i := 0; i < int(hdr.CellCount); i++ {
			off, err := hdr.CellOffset(page, i)
			if err != nil {
				return err
			}
			childPage, rec, err := parseIndexInteriorCell(page, off)
			if err != nil {
				return err
			}
			var key0 []byte
			if len(rec.Values) > 0 {
				key0 = indexKeyBytes(rec.Values[0])
			}
			cmp := bytes.Compare(target, key0)
			if cmp <= 0 {
				// target <= key0: descend left_child. Equal keys may
				// straddle the boundary, so equality also descends here.
				if err := probeIndexPage(ctx, r, childPage, target, out); err != nil {
					return err
				}
				descended = true
				break
			}
		}
		if !descended {
			return probeIndexPage(ctx, r, hdr.RightMostChild, target, out)
		}
		return nil

	case pager.KindLeafIndex:
		for i := 0; i < int(hdr.CellCount); i++ {
			off, err := hdr.CellOffset(page, i)
			if err != nil {
				return err
			}
			rec, err := parseIndexLeafCell(page, off)
			if err != nil {
				return err
			}
			if len(rec.Values) == 0 {
				continue
			}
			if bytes.Equal(indexKeyBytes(rec.Values[0]), target) {
				*out = append(*out, rowidFromLastValue(rec))
			}
		}
		return nil

	default:
		return nil
	}
}
