// Package schema reads the sqlite_schema catalog rooted at page 1 and
// parses the DDL text it carries for CREATE TABLE/CREATE INDEX objects.
package schema

import (
	"context"
	"strings"

	"github.com/gostudent/sqlitereader/internal/btree"
	"github.com/gostudent/sqlitereader/internal/pager"
	"github.com/gostudent/sqlitereader/internal/record"
)

// schemaRootPage is always page 1: the sqlite_schema table's own table
// B-tree root.
const schemaRootPage = 1

// Row is one row of sqlite_schema: type/name/tbl_name/rootpage/sql, in
// the fixed column order §3 specifies.
type Row struct {
	Type     string
	Name     string
	TblName  string
	RootPage uint32
	SQL      string
}

// Catalog indexes every schema row by the lookups the planner needs:
// resolving a table's root page + DDL, and finding a usable index for an
// equality predicate on a given column.
type Catalog struct {
	Rows []Row
}

// Load reads page 1's table B-tree (the schema table) and decodes every
// row into the fixed five-column shape. Page 1 being an interior page is
// handled transparently: btree.ScanTable already recurses through
// interior table pages before reaching leaves (§9 item 4), so the schema
// catalog never needs its own traversal logic distinct from an ordinary
// table scan.
func Load(ctx context.Context, r *pager.Reader) (*Catalog, error) {
	cat := &Catalog{}
	err := btree.ScanTable(ctx, r, schemaRootPage, func(cell *btree.TableCell) (bool, error) {
		row, ok := rowFromRecord(cell.Rowid, cell.Record)
		if ok {
			cat.Rows = append(cat.Rows, row)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func rowFromRecord(rowid uint64, rec *record.Record) (Row, bool) {
	if len(rec.Values) < 5 {
		return Row{}, false
	}
	var row Row
	row.Type = rec.Values[0].String()
	row.Name = rec.Values[1].String()
	row.TblName = rec.Values[2].String()
	if rec.Values[3].Kind == record.KindInt {
		row.RootPage = uint32(rec.Values[3].Int)
	}
	row.SQL = rec.Values[4].String()
	return row, true
}

// FindTable returns the row for the user table named name (byte-exact,
// type == "table"), or ok=false if none exists.
func (c *Catalog) FindTable(name string) (Row, bool) {
	for _, row := range c.Rows {
		if row.Type == "table" && row.TblName == name {
			return row, true
		}
	}
	return Row{}, false
}

// Tables returns the tbl_name of every schema row whose type is "table",
// in schema-page insertion order, matching the literal behavior .tables
// reproduces (§6).
func (c *Catalog) Tables() []string {
	var names []string
	for _, row := range c.Rows {
		if row.Type == "table" {
			names = append(names, row.TblName)
		}
	}
	return names
}

// FindIndexFor returns the first index row belonging to table whose
// first indexed column matches whereCol case-insensitively, along with
// that index's full column list.
func (c *Catalog) FindIndexFor(table, whereCol string) (Row, []string, bool) {
	for _, row := range c.Rows {
		if row.Type != "index" || row.TblName != table {
			continue
		}
		cols := ParseIndexColumns(row.SQL)
		if len(cols) == 0 {
			continue
		}
		if strings.EqualFold(cols[0], whereCol) {
			return row, cols, true
		}
	}
	return Row{}, nil, false
}
