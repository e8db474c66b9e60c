// Package mapped wraps read-only memory mapping of an input file behind an
// immutable byte-view API. Ownership of a View is exclusive to the worker
// that created it and must be released with Close once its scan completes.
package mapped

import (
	"fmt"
	"os"
	"syscall"
)

// A View is a read-only memory-mapped view of an entire file
type View struct {
	data []byte
}

// Map opens and memory-maps the file at path. The underlying file
// descriptor is closed before returning; the mapping outlives it. Mapping an
// empty file yields an empty View with no backing mapping.
func Map(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return &View{}, nil
	}
	data, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unable to map %s: %w", path, err)
	}
	return &View{data: data}, nil
}

// Bytes returns the mapped contents. The slice must not be written to, and
// must not be retained past Close.
func (v *View) Bytes() []byte {
	return v.data
}

// Len returns the size of the mapped file in bytes
func (v *View) Len() int {
	return len(v.data)
}

// Close releases the mapping. The View is unusable afterwards.
func (v *View) Close() error {
	if v.data == nil {
		return nil
	}
	data := v.data
	v.data = nil
	return syscall.Munmap(data)
}
