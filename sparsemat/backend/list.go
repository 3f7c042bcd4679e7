package backend

import "unsafe"

func init() {
	Register("list", NewListBackend)
}

// cellNode is one matrix cell on a row's inner circular list, sorted by
// ascending x.
type cellNode struct {
	prev, next *cellNode
	x          uint32
	value      uint32
}

// rowNode is one row on the outer circular list, sorted by ascending y.
// Each row owns a sentinel-headed inner list of cells.
type rowNode struct {
	prev, next *rowNode
	y          uint32
	cells      cellNode // Sentinel head of the inner circular list
}

// ListBackend is a two-level sorted circular list. Put walks the outer list
// to find or insert the row in y order, then walks that row's inner list to
// find or insert the cell in x order. Linear scan cost grows with row and
// column occupancy; this backend is intentionally the slowest and exists to
// quantify the benefit of the hash and tree alternatives.
//
// Deletion policy: logical tombstoning. Del zeroes the cell value and keeps
// both nodes so sortedness is never perturbed by deletion. Footprint counts
// every retained row and cell node.
type ListBackend struct {
	rows      rowNode // Sentinel head of the outer circular list
	rowCount  uint64
	cellCount uint64
}

// NewListBackend creates an empty ListBackend; the list needs no sizing
// hints.
func NewListBackend(_ Config) (Backend, error) {
	l := &ListBackend{}

	l.rows.prev = &l.rows
	l.rows.next = &l.rows

	return l, nil
}

// findRow returns the row with the given y, or nil. Scanning stops at the
// first row with a larger y thanks to the sort order.
func (l *ListBackend) findRow(y uint32) *rowNode {
	for row := l.rows.next; row != &l.rows && row.y <= y; row = row.next {
		if row.y == y {
			return row
		}
	}

	return nil
}

// insertRow links a new row for y in sorted position and returns it.
func (l *ListBackend) insertRow(y uint32) *rowNode {
	at := l.rows.next
	for at != &l.rows && at.y < y {
		at = at.next
	}

	row := &rowNode{y: y}
	row.cells.prev = &row.cells
	row.cells.next = &row.cells

	// Link before "at".
	row.prev = at.prev
	row.next = at
	at.prev.next = row
	at.prev = row

	l.rowCount++

	return row
}

// findCell returns the cell with the given x on row, or nil.
func (row *rowNode) findCell(x uint32) *cellNode {
	for cell := row.cells.next; cell != &row.cells && cell.x <= x; cell = cell.next {
		if cell.x == x {
			return cell
		}
	}

	return nil
}

// Put inserts or overwrites the value at (x, y), keeping both levels sorted.
func (l *ListBackend) Put(x, y, value uint32) error {
	row := l.findRow(y)
	if row == nil {
		row = l.insertRow(y)
	}

	at := row.cells.next
	for at != &row.cells && at.x < x {
		at = at.next
	}

	if at != &row.cells && at.x == x {
		at.value = value

		return nil
	}

	cell := &cellNode{x: x, value: value}

	cell.prev = at.prev
	cell.next = at
	at.prev.next = cell
	at.prev = cell

	l.cellCount++

	return nil
}

// Get returns the value at (x, y), or 0 when absent or tombstoned.
func (l *ListBackend) Get(x, y uint32) (uint32, error) {
	row := l.findRow(y)
	if row == nil {
		return 0, nil
	}

	cell := row.findCell(x)
	if cell == nil {
		return 0, nil
	}

	return cell.value, nil
}

// Del tombstones (x, y); row and cell nodes are retained so that the sorted
// structure is undisturbed.
func (l *ListBackend) Del(x, y uint32) error {
	row := l.findRow(y)
	if row == nil {
		return nil
	}

	if cell := row.findCell(x); cell != nil {
		cell.value = 0
	}

	return nil
}

// Footprint counts all retained row and cell nodes; tombstoning means the
// counts never shrink, so this is also the run's peak.
func (l *ListBackend) Footprint() uint64 {
	return l.rowCount*uint64(unsafe.Sizeof(rowNode{})) +
		l.cellCount*uint64(unsafe.Sizeof(cellNode{}))
}

// Close unlinks the sentinel so the whole graph is collectable.
func (l *ListBackend) Close() error {
	l.rows.prev = &l.rows
	l.rows.next = &l.rows
	l.rowCount = 0
	l.cellCount = 0

	return nil
}
