//go:build linux

package backend

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mincore wraps the mincore(2) syscall, which golang.org/x/sys/unix does not
// expose as a wrapper on Linux.
func mincore(b []byte, vec []byte) error {
	_, _, errno := unix.Syscall(
		unix.SYS_MINCORE,
		uintptr(unsafe.Pointer(&b[0])),
		uintptr(len(b)),
		uintptr(unsafe.Pointer(&vec[0])),
	)
	if errno != 0 {
		return errno
	}

	return nil
}

func init() {
	Register("mmap", NewMmapBackend)
}

// mmapAdmissionFactor is the safety multiple the admission check requires:
// free physical memory plus free swap must exceed this many times the
// nominal mapping size before the mapping is attempted.
const mmapAdmissionFactor = 2

const cellSize = 4 // sizeof(uint32)

// MmapBackend is the dense baseline: one anonymous zero-initialized
// page-backed mapping of DimX×DimY cells with direct O(1) indexed access.
// It is the only bounded backend; out-of-range coordinates are rejected with
// ErrOutOfRange before any indexing happens.
//
// Deletion policy: Del zeroes the cell in place, which is indistinguishable
// from tombstoning for a dense array. Footprint samples per-page residency
// with mincore rather than reporting the nominal mapping size, since a
// sparse fill leaves most pages untouched.
type MmapBackend struct {
	data     []byte
	dimX     uint32
	dimY     uint32
	pageSize uint64
}

// NewMmapBackend checks admission and creates the mapping. The admission
// check fails fast with ErrOutOfMemory when free RAM plus swap cannot cover
// mmapAdmissionFactor times the mapping, rather than risking an OOM kill
// mid-run.
func NewMmapBackend(cfg Config) (Backend, error) {
	pageSize := uint64(unix.Getpagesize())

	mapBytes := uint64(cfg.DimX) * uint64(cfg.DimY) * cellSize
	if rem := mapBytes % pageSize; rem != 0 {
		mapBytes += pageSize - rem
	}

	if mapBytes == 0 {
		return nil, fmt.Errorf("%w: zero-sized matrix %dx%d", ErrMmapFailed, cfg.DimX, cfg.DimY)
	}

	available, err := availableMemory()
	if err == nil && available < mmapAdmissionFactor*mapBytes {
		return nil, fmt.Errorf(
			"%w: mapping needs %d bytes with %dx headroom, %d available",
			ErrOutOfMemory, mapBytes, mmapAdmissionFactor, available,
		)
	}

	data, err := unix.Mmap(
		-1, 0, int(mapBytes),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	return &MmapBackend{
		data:     data,
		dimX:     cfg.DimX,
		dimY:     cfg.DimY,
		pageSize: pageSize,
	}, nil
}

// availableMemory returns free physical memory plus free swap in bytes.
func availableMemory() (uint64, error) {
	var info unix.Sysinfo_t

	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}

	unit := uint64(info.Unit)

	return (uint64(info.Freeram) + uint64(info.Freeswap)) * unit, nil
}

// offset computes the byte offset of cell (x, y). Callers must have bounds-
// checked first.
func (m *MmapBackend) offset(x, y uint32) uint64 {
	return (uint64(y)*uint64(m.dimX) + uint64(x)) * cellSize
}

func (m *MmapBackend) checkBounds(x, y uint32) error {
	if x >= m.dimX || y >= m.dimY {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfRange, x, y, m.dimX, m.dimY)
	}

	return nil
}

// Put writes the value at (x, y), rejecting out-of-range coordinates.
func (m *MmapBackend) Put(x, y, value uint32) error {
	if err := m.checkBounds(x, y); err != nil {
		return err
	}

	off := m.offset(x, y)
	binary.LittleEndian.PutUint32(m.data[off:off+cellSize], value)

	return nil
}

// Get returns the value at (x, y); untouched cells read as the zero
// sentinel because the mapping starts zero-filled. Out-of-range coordinates
// are rejected with ErrOutOfRange.
func (m *MmapBackend) Get(x, y uint32) (uint32, error) {
	if err := m.checkBounds(x, y); err != nil {
		return 0, err
	}

	off := m.offset(x, y)

	return binary.LittleEndian.Uint32(m.data[off : off+cellSize]), nil
}

// Del zeroes the cell at (x, y), rejecting out-of-range coordinates.
func (m *MmapBackend) Del(x, y uint32) error {
	if err := m.checkBounds(x, y); err != nil {
		return err
	}

	off := m.offset(x, y)
	binary.LittleEndian.PutUint32(m.data[off:off+cellSize], 0)

	return nil
}

// Footprint estimates resident bytes by sampling per-page residency with
// mincore. The nominal mapping size would wildly overstate a sparse fill.
func (m *MmapBackend) Footprint() uint64 {
	if len(m.data) == 0 {
		return 0
	}

	pages := (uint64(len(m.data)) + m.pageSize - 1) / m.pageSize

	vec := make([]byte, pages)
	if err := mincore(m.data, vec); err != nil {
		return 0
	}

	var resident uint64

	for _, flags := range vec {
		if flags&1 != 0 {
			resident += m.pageSize
		}
	}

	return resident
}

// Close unmaps the region.
func (m *MmapBackend) Close() error {
	if m.data == nil {
		return nil
	}

	err := unix.Munmap(m.data)
	m.data = nil

	return err
}
