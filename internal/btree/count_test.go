package btree

import (
	"context"
	"testing"
)

func TestCountRowsSumsLeafCells(t *testing.T) {
	page2 := buildLeafTablePage(0, [][]byte{cellFor(1, 1), cellFor(2, 2), cellFor(3, 3), cellFor(4, 4)})
	r := writeTestDB(t, page2)

	n, err := CountRows(context.Background(), r, 2)
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 4 {
		t.Fatalf("CountRows = %d, want 4", n)
	}
}

func TestCountRowsEmptyLeaf(t *testing.T) {
	page2 := buildLeafTablePage(0, nil)
	r := writeTestDB(t, page2)

	n, err := CountRows(context.Background(), r, 2)
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountRows = %d, want 0", n)
	}
}
