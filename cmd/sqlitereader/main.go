// Command sqlitereader answers a small set of read-only queries against a
// SQLite-format database file by decoding its on-disk page/B-tree layout
// directly, with no dependency on a SQLite library.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gostudent/sqlitereader/internal/engine"
	"github.com/gostudent/sqlitereader/internal/pager"
)

func main() {
	if err := runProgram(os.Args); err != nil {
		os.Exit(1)
	}
}

// runProgram implements the CLI end to end so tests can drive it without
// forking a process, mirroring the teacher's own test harness style.
func runProgram(args []string) error {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: sqlitereader <database file> <command>")
		return errors.New("wrong argument count")
	}
	dbPath := args[1]
	command := args[2]

	ctx := context.Background()
	eng, err := engine.Open(ctx, dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open the database file:", err)
		return err
	}
	defer eng.Close()

	switch {
	case command == ".dbinfo":
		return runDBInfo(ctx, eng)
	case command == ".tables":
		return runTables(eng)
	case strings.HasPrefix(strings.ToUpper(strings.TrimSpace(command)), "SELECT"):
		return runSelect(ctx, eng, command)
	default:
		// Unrecognized command shape: treated like malformed SQL (§7).
		fmt.Println()
		return nil
	}
}

func runDBInfo(ctx context.Context, eng *engine.Engine) error {
	numTables, err := eng.SchemaRootCellCount(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("database page size: %d\n", eng.PageSize())
	fmt.Printf("number of tables: %d\n", numTables)
	return nil
}

func runTables(eng *engine.Engine) error {
	fmt.Println(strings.Join(eng.Tables(), " "))
	return nil
}

func runSelect(ctx context.Context, eng *engine.Engine, command string) error {
	lines, err := eng.ExecuteSelect(ctx, command)
	if err != nil {
		var dbErr *pager.DatabaseError
		if errors.As(err, &dbErr) && errors.Is(dbErr.Err, pager.ErrMalformedSQL) {
			fmt.Println()
			return nil
		}
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
