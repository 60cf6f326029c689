package engine

import (
	"context"
	"strings"

	"github.com/gostudent/sqlitereader/internal/btree"
	"github.com/gostudent/sqlitereader/internal/pager"
	"github.com/gostudent/sqlitereader/internal/record"
	"github.com/gostudent/sqlitereader/internal/schema"
)

// Engine wires the catalog, B-tree traversal, and output formatting
// together behind the small set of commands the CLI supports. One Engine
// is opened per process invocation and closed at exit (§5).
type Engine struct {
	reader    *pager.Reader
	catalog   *schema.Catalog
	formatter OutputFormatter
}

// Option configures an Engine at Open time.
type Option func(*Engine)

// WithFormatter overrides the default ConsoleFormatter.
func WithFormatter(f OutputFormatter) Option {
	return func(e *Engine) { e.formatter = f }
}

// Open opens the database file and loads its schema catalog once, ready
// to answer .dbinfo, .tables, or a restricted SELECT.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	r, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	cat, err := schema.Load(ctx, r)
	if err != nil {
		r.Close()
		return nil, err
	}
	e := &Engine{reader: r, catalog: cat, formatter: ConsoleFormatter{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the underlying file handle.
func (e *Engine) Close() error { return e.reader.Close() }

// PageSize returns the database's fixed page size, for .dbinfo.
func (e *Engine) PageSize() uint32 { return e.reader.PageSize() }

// SchemaRootCellCount returns page 1's raw cell count, which .dbinfo
// reports verbatim as "number of tables" (§6, §9 item 1) — a documented
// fidelity gap: it also counts index/view/trigger rows.
func (e *Engine) SchemaRootCellCount(ctx context.Context) (uint16, error) {
	_, hdr, err := e.reader.ReadPageHeader(ctx, 1)
	if err != nil {
		return 0, err
	}
	return hdr.CellCount, nil
}

// Tables returns every schema row's tbl_name where type == "table", for
// .tables.
func (e *Engine) Tables() []string {
	return e.catalog.Tables()
}

// ExecuteSelect runs a restricted SELECT (§6) and returns the output
// lines it produces, already formatted. A grammar error is returned to
// the caller as-is (wrapping pager.ErrMalformedSQL) so it can apply the
// "empty line, exit 0" rule (§7); every other failure mode described by
// §4.12/§7 (missing table, unknown projection/WHERE column) is resolved
// internally into the correct line set.
func (e *Engine) ExecuteSelect(ctx context.Context, command string) ([]string, error) {
	q, err := ParseSelect(command)
	if err != nil {
		return nil, err
	}

	tableRow, ok := e.catalog.FindTable(q.Table)
	if !ok {
		if q.CountStar {
			return []string{"0"}, nil
		}
		return nil, nil
	}
	def := schema.ParseCreateTable(tableRow.SQL)

	var projIdx []int
	if !q.CountStar {
		for _, col := range q.Columns {
			idx := indexOfColumn(def.Columns, col)
			if idx == -1 {
				return []string{""}, nil
			}
			projIdx = append(projIdx, idx)
		}
	}

	whereIdx := -1
	if q.HasWhere {
		whereIdx = indexOfColumn(def.Columns, q.WhereCol)
		if whereIdx == -1 {
			if q.CountStar {
				return []string{"0"}, nil
			}
			return nil, nil
		}
	}

	if q.CountStar && !q.HasWhere {
		n, err := btree.CountRows(ctx, e.reader, tableRow.RootPage)
		if err != nil {
			return nil, err
		}
		return []string{e.formatter.FormatCount(n)}, nil
	}

	if q.HasWhere {
		if idxRow, _, ok := e.catalog.FindIndexFor(q.Table, q.WhereCol); ok {
			return e.executeViaIndex(ctx, idxRow.RootPage, tableRow.RootPage, q, def, projIdx)
		}
	}

	return e.executeViaScan(ctx, tableRow.RootPage, q, def, whereIdx, projIdx)
}

func (e *Engine) executeViaIndex(ctx context.Context, indexRoot, tableRoot uint32, q *Query, def schema.TableDef, projIdx []int) ([]string, error) {
	rowids, err := btree.ProbeIndex(ctx, e.reader, indexRoot, q.WhereVal)
	if err != nil {
		return nil, err
	}
	var lines []string
	count := 0
	for _, rowid := range rowids {
		cell, err := btree.LookupRowid(ctx, e.reader, tableRoot, rowid)
		if err != nil {
			return nil, err
		}
		if cell == nil {
			continue
		}
		count++
		if !q.CountStar {
			lines = append(lines, e.formatter.FormatRow(projectRow(cell, projIdx, def)))
		}
	}
	if q.CountStar {
		return []string{e.formatter.FormatCount(count)}, nil
	}
	return lines, nil
}

func (e *Engine) executeViaScan(ctx context.Context, tableRoot uint32, q *Query, def schema.TableDef, whereIdx int, projIdx []int) ([]string, error) {
	var lines []string
	count := 0
	err := btree.ScanTable(ctx, e.reader, tableRoot, func(cell *btree.TableCell) (bool, error) {
		if q.HasWhere {
			val := columnValue(cell, whereIdx, def)
			if val.String() != q.WhereVal {
				return false, nil
			}
		}
		count++
		if !q.CountStar {
			lines = append(lines, e.formatter.FormatRow(projectRow(cell, projIdx, def)))
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if q.CountStar {
		return []string{e.formatter.FormatCount(count)}, nil
	}
	return lines, nil
}

// columnValue resolves column idx of cell's row, substituting the cell's
// rowid for the table's rowid-alias column (§3's "rowid alias" rule, and
// testable property 6).
func columnValue(cell *btree.TableCell, idx int, def schema.TableDef) record.Value {
	if idx == def.RowidAliasIdx {
		return record.Int64(int64(cell.Rowid))
	}
	if idx < 0 || idx >= len(cell.Record.Values) {
		return record.Null()
	}
	return cell.Record.Values[idx]
}

func projectRow(cell *btree.TableCell, projIdx []int, def schema.TableDef) []record.Value {
	values := make([]record.Value, len(projIdx))
	for i, idx := range projIdx {
		values[i] = columnValue(cell, idx, def)
	}
	return values
}

func indexOfColumn(cols []schema.Column, name string) int {
	want := strings.ToUpper(strings.Trim(name, "`\"'"))
	for i, c := range cols {
		if c.Name == want {
			return i
		}
	}
	return -1
}
