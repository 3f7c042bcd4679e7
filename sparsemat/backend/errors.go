package backend

import "errors"

var (
	// ErrUnknownBackend is returned by New when the requested name is not in
	// the registry.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrOutOfMemory indicates a backend declined to allocate (admission
	// check failed or the allocation itself failed). Callers treat it as
	// "skip this backend", not as a run failure.
	ErrOutOfMemory = errors.New("insufficient memory for backend")
	// ErrCapacityExceeded is returned by Put when a fixed-capacity backend
	// has exhausted its preallocated pool.
	ErrCapacityExceeded = errors.New("backend capacity exhausted")
	// ErrOutOfRange is returned by bounded backends for coordinates at or
	// beyond the configured matrix dimensions.
	ErrOutOfRange = errors.New("coordinate out of range")
	// ErrBoltOpenFailed indicates opening the bbolt scratch database failed.
	ErrBoltOpenFailed = errors.New("bolt open failed")
	// ErrBoltBucketCreateFailed indicates creating the bbolt bucket failed.
	ErrBoltBucketCreateFailed = errors.New("bolt bucket create failed")
	// ErrBoltWriteFailed indicates writing to the bbolt database failed.
	ErrBoltWriteFailed = errors.New("bolt write failed")
	// ErrBoltReadFailed indicates reading from the bbolt database failed.
	ErrBoltReadFailed = errors.New("bolt read failed")
	// ErrBoltDeleteFailed indicates deleting from the bbolt database failed.
	ErrBoltDeleteFailed = errors.New("bolt delete failed")
	// ErrMmapFailed indicates the anonymous mapping could not be created.
	ErrMmapFailed = errors.New("mmap failed")
)
