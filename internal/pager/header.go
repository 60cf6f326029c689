package pager

import "fmt"

// FileHeaderSize is the fixed size of the SQLite file header at the start
// of page 1.
const FileHeaderSize = 100

// sqliteMagic is the 16-byte header string every SQLite3 file begins with.
const sqliteMagic = "SQLite format 3\x00"

// FileHeader is the subset of the 100-byte file header this engine cares
// about: the page size used to compute every other page's offset.
type FileHeader struct {
	PageSize uint32
}

// ParseFileHeader validates the magic number and decodes the page size
// from the first 100 bytes of the file.
func ParseFileHeader(buf []byte) (*FileHeader, error) {
	if len(buf) < FileHeaderSize {
		return nil, NewDatabaseError("parse_file_header", ErrInsufficientData, map[string]interface{}{
			"have": len(buf), "want": FileHeaderSize,
		})
	}
	if string(buf[0:16]) != sqliteMagic {
		return nil, NewDatabaseError("parse_file_header", ErrInvalidDatabase, map[string]interface{}{
			"reason": "bad magic number",
		})
	}
	raw := U16BE(buf[16:18])
	var pageSize uint32
	switch raw {
	case 1:
		pageSize = 65536
	default:
		pageSize = uint32(raw)
	}
	if pageSize < 512 || (pageSize&(pageSize-1)) != 0 {
		return nil, NewDatabaseError("parse_file_header", ErrInvalidDatabase, map[string]interface{}{
			"reason": fmt.Sprintf("page size %d is not a power of two in [512,65536]", pageSize),
		})
	}
	return &FileHeader{PageSize: pageSize}, nil
}

// PageKind identifies one of the four B-tree page kinds this engine
// understands. Any other byte value is corruption (§9 open question 3).
type PageKind byte

const (
	KindInteriorIndex PageKind = 0x02
	KindInteriorTable PageKind = 0x05
	KindLeafIndex     PageKind = 0x0A
	KindLeafTable     PageKind = 0x0D
)

// IsInterior reports whether the page kind carries a right-most child
// pointer and a 12-byte header.
func (k PageKind) IsInterior() bool {
	return k == KindInteriorIndex || k == KindInteriorTable
}

// IsTable reports whether the page kind belongs to a table B-tree (as
// opposed to an index B-tree).
func (k PageKind) IsTable() bool {
	return k == KindInteriorTable || k == KindLeafTable
}

// Valid reports whether k is one of the four recognized page kinds.
func (k PageKind) Valid() bool {
	switch k {
	case KindInteriorIndex, KindInteriorTable, KindLeafIndex, KindLeafTable:
		return true
	default:
		return false
	}
}

// PageHeader is the decoded B-tree page header, independent of where in
// the page buffer it started.
type PageHeader struct {
	Kind              PageKind
	FirstFreeblock    uint16
	CellCount         uint16
	CellContentStart  uint16
	FragmentedBytes   uint8
	RightMostChild    uint32 // only meaningful when Kind.IsInterior()
	HeaderOffset      int    // offset of this header within the page buffer
	CellPointerOffset int    // offset of the cell pointer array within the page buffer
}

// HeaderSize returns 8 for leaf pages and 12 for interior pages.
func (h *PageHeader) HeaderSize() int {
	if h.Kind.IsInterior() {
		return 12
	}
	return 8
}

// ParsePageHeader reads a B-tree page header out of page, which starts at
// headerOffset (100 for page 1's own header, 0 otherwise).
func ParsePageHeader(page []byte, headerOffset int) (*PageHeader, error) {
	if headerOffset+8 > len(page) {
		return nil, NewDatabaseError("parse_page_header", ErrInsufficientData, map[string]interface{}{
			"offset": headerOffset, "page_len": len(page),
		})
	}
	kind := PageKind(page[headerOffset])
	if !kind.Valid() {
		return nil, NewDatabaseError("parse_page_header", ErrCorruptPage, map[string]interface{}{
			"byte": fmt.Sprintf("0x%02x", page[headerOffset]),
		})
	}
	h := &PageHeader{
		Kind:             kind,
		FirstFreeblock:   U16BE(page[headerOffset+1 : headerOffset+3]),
		CellCount:        U16BE(page[headerOffset+3 : headerOffset+5]),
		CellContentStart: U16BE(page[headerOffset+5 : headerOffset+7]),
		FragmentedBytes:  page[headerOffset+7],
		HeaderOffset:     headerOffset,
	}
	if kind.IsInterior() {
		if headerOffset+12 > len(page) {
			return nil, NewDatabaseError("parse_page_header", ErrInsufficientData, nil)
		}
		h.RightMostChild = U32BE(page[headerOffset+8 : headerOffset+12])
	}
	h.CellPointerOffset = headerOffset + h.HeaderSize()
	return h, nil
}

// CellOffset returns the absolute-within-page offset of cell i, read from
// the cell pointer array.
func (h *PageHeader) CellOffset(page []byte, i int) (int, error) {
	pos := h.CellPointerOffset + i*2
	if pos+2 > len(page) {
		return 0, NewDatabaseError("read_cell_pointer", ErrInvalidCellPointer, map[string]interface{}{
			"index": i, "pos": pos,
		})
	}
	return int(U16BE(page[pos : pos+2])), nil
}
