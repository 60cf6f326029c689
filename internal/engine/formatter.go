package engine

import (
	"strconv"
	"strings"

	"github.com/gostudent/sqlitereader/internal/record"
)

// OutputFormatter renders query results for the CLI. Kept as an
// interface, in the teacher's style, even though ConsoleFormatter is the
// only implementation this spec's scope calls for — a JSON variant was
// dropped rather than carried unused (see DESIGN.md).
type OutputFormatter interface {
	FormatRow(values []record.Value) string
	FormatCount(n int) string
}

// ConsoleFormatter renders rows with columns joined by '|', per §6 — no
// single-column exception, unlike the teacher's original formatter.
type ConsoleFormatter struct{}

func (ConsoleFormatter) FormatRow(values []record.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, "|")
}

func (ConsoleFormatter) FormatCount(n int) string {
	return strconv.Itoa(n)
}
