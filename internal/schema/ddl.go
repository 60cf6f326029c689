package schema

import (
	"strings"
)

// Column is one column of a CREATE TABLE statement, as needed by the
// planner: its declared name. Which column is the rowid alias is recorded
// on TableDef.RowidAliasIdx, not here.
type Column struct {
	Name string // uppercased, for case-insensitive comparison
}

// TableDef is the result of parsing a CREATE TABLE statement: column
// order (for projection) and, if present, the rowid-alias column index.
type TableDef struct {
	Columns        []Column
	RowidAliasIdx  int // -1 if no rowid alias column
}

// splitTopLevel splits s on commas that are not nested inside
// parentheses, tracking paren depth the way §4.8 requires — distinct from
// a naive strings.Split, which would break on a column type like
// DECIMAL(10,2).
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var cur strings.Builder
	for _, c := range s {
		switch {
		case c == '(':
			depth++
			cur.WriteRune(c)
		case c == ')':
			depth--
			cur.WriteRune(c)
		case c == ',' && depth == 0:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	if cur.Len() > 0 || len(parts) > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// parenBody returns the substring strictly between the first '(' and the
// last ')' in s, or "" if either is missing or out of order.
func parenBody(s string) string {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start+1 : end]
}

// firstToken returns the first whitespace-delimited token of s, with any
// surrounding quote characters stripped.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `"'`+"`")
}

// ParseCreateTable extracts column names and rowid-alias detection from a
// CREATE TABLE statement, per §4.8: split the parenthesized list at
// top-level commas, take each colspec's first token as the column name
// (compared case-insensitively), and flag the first column whose
// uppercased definition contains both PRIMARY KEY and either INTEGER or
// the token " INT" as the rowid alias.
func ParseCreateTable(sql string) TableDef {
	def := TableDef{RowidAliasIdx: -1}
	body := parenBody(sql)
	if body == "" {
		return def
	}
	for _, spec := range splitTopLevel(body) {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		name := strings.ToUpper(firstToken(spec))
		if name == "" {
			continue
		}
		def.Columns = append(def.Columns, Column{Name: name})
		upper := strings.ToUpper(spec)
		if def.RowidAliasIdx == -1 && strings.Contains(upper, "PRIMARY KEY") &&
			(strings.Contains(upper, "INTEGER") || strings.Contains(upper, " INT")) {
			def.RowidAliasIdx = len(def.Columns) - 1
		}
	}
	return def
}

// ParseIndexColumns extracts the indexed column list from a CREATE INDEX
// statement: the parenthesized list after " ON <table>", comma-split and
// trimmed. Only indexed_column_names[0] is ever consulted by the
// planner (§4.8), but the full list is returned for completeness.
func ParseIndexColumns(sql string) []string {
	upper := strings.ToUpper(sql)
	onPos := strings.Index(upper, " ON ")
	searchFrom := 0
	if onPos != -1 {
		searchFrom = onPos
	}
	rest := sql[searchFrom:]
	body := parenBody(rest)
	if body == "" {
		return nil
	}
	var cols []string
	for _, part := range splitTopLevel(body) {
		name := firstToken(part)
		if name != "" {
			cols = append(cols, strings.ToUpper(name))
		}
	}
	return cols
}

// ParseIndexTableName extracts the table name an index is declared
// against: the token immediately following " ON " (case-insensitive),
// with a trailing "(" stripped if the name and column list were not
// separated by whitespace.
func ParseIndexTableName(sql string) string {
	upper := strings.ToUpper(sql)
	onPos := strings.Index(upper, " ON ")
	if onPos == -1 {
		return ""
	}
	rest := strings.TrimSpace(sql[onPos+4:])
	if idx := strings.IndexAny(rest, " \t(\"'`"); idx != -1 {
		rest = rest[:idx]
	}
	return strings.Trim(rest, `"'`+"`")
}
