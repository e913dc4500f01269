// Package file provides sparse-aware file utilities: extent discovery
// (SEEK_DATA/SEEK_HOLE) and copying a file into a destination shifted by a
// fixed prefix offset without materializing its holes.
package file

import "errors"

var (
	// ErrSparseUnsupported is returned when the filesystem or kernel does not support
	// SEEK_DATA/SEEK_HOLE extent queries.
	ErrSparseUnsupported = errors.New("sparse extent queries not supported")
	// ErrShortWrite is returned when a write accepts fewer bytes than requested.
	ErrShortWrite = errors.New("short write")
	// ErrInvalidOffset is returned when a negative prefix offset is requested.
	ErrInvalidOffset = errors.New("invalid prefix offset")
	// ErrSameFile is returned when the source and the destination are the same file.
	ErrSameFile = errors.New("source and destination are the same file")
)
