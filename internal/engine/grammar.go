package engine

import (
	"strings"

	"github.com/gostudent/sqlitereader/internal/pager"
	"github.com/xwb1989/sqlparser"
)

// ParseSelect parses command against the restricted grammar in §6: a bare
// column list or the exact token COUNT(*), a single table, and at most
// one `col = literal` WHERE clause. Anything wider — SELECT *, multiple
// tables, AND/OR, operators other than =, parenthesized expressions — is
// reported as ErrMalformedSQL so the caller can fall into the §7 "empty
// line, exit 0" path rather than a hard failure; this grammar is
// deliberately narrower than what the kept parser itself accepts.
func ParseSelect(command string) (*Query, error) {
	stmt, err := sqlparser.Parse(command)
	if err != nil {
		return nil, pager.NewDatabaseError("parse_select", pager.ErrMalformedSQL, map[string]interface{}{"reason": err.Error()})
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, pager.NewDatabaseError("parse_select", pager.ErrMalformedSQL, map[string]interface{}{"reason": "not a SELECT statement"})
	}

	q := &Query{}
	for _, expr := range sel.SelectExprs {
		aliased, ok := expr.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, malformed("projection is not a bare expression list")
		}
		switch e := aliased.Expr.(type) {
		case *sqlparser.ColName:
			q.Columns = append(q.Columns, stripQuotes(e.Name.String()))
		case *sqlparser.FuncExpr:
			if !strings.EqualFold(e.Name.String(), "count") || len(e.Exprs) != 1 {
				return nil, malformed("only COUNT(*) is supported as a function projection")
			}
			if _, ok := e.Exprs[0].(*sqlparser.StarExpr); !ok {
				return nil, malformed("COUNT must be COUNT(*)")
			}
			q.CountStar = true
		default:
			return nil, malformed("projection must be bare columns or COUNT(*)")
		}
	}
	if q.CountStar && len(q.Columns) > 0 {
		return nil, malformed("cannot mix COUNT(*) with column projections")
	}

	if len(sel.From) != 1 {
		return nil, malformed("exactly one table is required in FROM")
	}
	aliasedTable, ok := sel.From[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return nil, malformed("FROM must name a single table")
	}
	tableName, ok := aliasedTable.Expr.(sqlparser.TableName)
	if !ok {
		return nil, malformed("FROM must name a single table")
	}
	q.Table = tableName.Name.String()

	if sel.Where != nil {
		col, val, err := parseEqualityWhere(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		q.HasWhere = true
		q.WhereCol = col
		q.WhereVal = val
	}

	return q, nil
}

func parseEqualityWhere(expr sqlparser.Expr) (col, val string, err error) {
	cmp, ok := expr.(*sqlparser.ComparisonExpr)
	if !ok {
		return "", "", malformed("WHERE supports only a single col = literal comparison")
	}
	if cmp.Operator != sqlparser.EqualStr {
		return "", "", malformed("WHERE supports only the = operator")
	}
	colName, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return "", "", malformed("WHERE left-hand side must be a column name")
	}
	sqlVal, ok := cmp.Right.(*sqlparser.SQLVal)
	if !ok {
		return "", "", malformed("WHERE right-hand side must be a literal")
	}
	switch sqlVal.Type {
	case sqlparser.StrVal, sqlparser.IntVal, sqlparser.FloatVal:
		return stripQuotes(colName.Name.String()), string(sqlVal.Val), nil
	default:
		return "", "", malformed("unsupported WHERE literal type")
	}
}

func stripQuotes(s string) string {
	return strings.Trim(s, "`\"'")
}

func malformed(reason string) error {
	return pager.NewDatabaseError("parse_select", pager.ErrMalformedSQL, map[string]interface{}{"reason": reason})
}
