package pager

import (
	"context"
	"os"
)

// Reader reads whole pages out of a SQLite file by 1-based page number.
// It owns the underlying file handle and is safe for the single-threaded,
// one-command-per-process use this engine is built for (§5) — it makes no
// concurrency guarantees beyond that.
type Reader struct {
	file     *os.File
	header   *FileHeader
	config   *Config
	resource *ResourceManager
}

// Open opens path read-only, parses the 100-byte file header, and returns
// a Reader ready to serve pages.
func Open(path string, opts ...Option) (*Reader, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NewDatabaseError("open_database", err, map[string]interface{}{"path": path})
	}

	rm := &ResourceManager{}
	rm.Add(f)

	buf := make([]byte, FileHeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		rm.Close()
		return nil, NewDatabaseError("read_file_header", err, map[string]interface{}{"path": path})
	}
	header, err := ParseFileHeader(buf)
	if err != nil {
		rm.Close()
		return nil, err
	}

	return &Reader{file: f, header: header, config: cfg, resource: rm}, nil
}

// PageSize returns the database's fixed page size.
func (r *Reader) PageSize() uint32 { return r.header.PageSize }

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.resource.Close() }

// HeaderOffset returns the offset within a page buffer where its B-tree
// page header begins: 100 for page 1, 0 for every other page.
func HeaderOffset(pageNum uint32) int {
	if pageNum == 1 {
		return FileHeaderSize
	}
	return 0
}

// ReadPage reads the full contents of the 1-based page pageNum.
func (r *Reader) ReadPage(ctx context.Context, pageNum uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageNum == 0 {
		return nil, NewDatabaseError("read_page", ErrInvalidDatabase, map[string]interface{}{
			"reason": "page numbers are 1-based",
		})
	}
	size := r.header.PageSize
	offset := int64(pageNum-1) * int64(size)
	buf := make([]byte, size)
	if _, err := r.file.ReadAt(buf, offset); err != nil {
		return nil, NewDatabaseError("read_page", err, map[string]interface{}{
			"page": pageNum, "offset": offset,
		})
	}
	return buf, nil
}

// ReadPageHeader reads page pageNum and parses its B-tree page header. In
// ValidationStrict mode it additionally rejects a cell-content area that
// falls outside the page or inside the header/pointer-array region —
// ValidationBasic leaves that check to the cell readers themselves, which
// fail more specifically (e.g. ErrInvalidCellPointer) when they actually
// try to use a bad pointer.
func (r *Reader) ReadPageHeader(ctx context.Context, pageNum uint32) ([]byte, *PageHeader, error) {
	page, err := r.ReadPage(ctx, pageNum)
	if err != nil {
		return nil, nil, err
	}
	hdr, err := ParsePageHeader(page, HeaderOffset(pageNum))
	if err != nil {
		return nil, nil, err
	}
	if r.config.ValidationMode == ValidationStrict {
		if int(hdr.CellContentStart) > len(page) || (hdr.CellContentStart != 0 && int(hdr.CellContentStart) < hdr.CellPointerOffset) {
			return nil, nil, NewDatabaseError("read_page_header", ErrCorruptPage, map[string]interface{}{
				"cell_content_start": hdr.CellContentStart, "page": pageNum,
			})
		}
	}
	return page, hdr, nil
}
