package file

import (
	"fmt"
	"io"
	"os"
)

// Position is the result of an extent query. Either a position was found or
// there are no more extents of the requested kind; I/O failures are reported
// apart, as an error.
type Position struct {
	Offset       int64
	EndOfExtents bool
}

// Found returns a Position pointing at off.
func Found(off int64) Position { return Position{Offset: off} }

// EndOfExtents is the Position returned when no further extent exists.
var EndOfExtents = Position{EndOfExtents: true}

// ExtentKind classifies an extent.
type ExtentKind string

const (
	// ExtentData is an allocated range.
	ExtentData ExtentKind = "data"
	// ExtentHole is an unallocated range that reads back as zeros.
	ExtentHole ExtentKind = "hole"
)

// Extent is a [Start, End) range of a file.
type Extent struct {
	Start int64
	End   int64
	Kind  ExtentKind
}

// Len returns the extent length in bytes.
func (e Extent) Len() int64 { return e.End - e.Start }

// extentFinder answers "next data at or after" and "next hole at or after" queries.
type extentFinder interface {
	nextData(off int64) (Position, error)
	nextHole(off int64) (Position, error)
}

// denseFinder reports the whole file as a single data extent. Used when the
// storage can't answer extent queries.
type denseFinder struct {
	size int64
}

func (d denseFinder) nextData(off int64) (Position, error) {
	if off >= d.size {
		return EndOfExtents, nil
	}
	return Found(off), nil
}

func (d denseFinder) nextHole(off int64) (Position, error) {
	if off >= d.size {
		return EndOfExtents, nil
	}
	return Found(d.size), nil
}

// dataExtent returns the next data extent at or after off, clamped to size.
// ok is false when there is no more data.
func dataExtent(f extentFinder, off, size int64) (ext Extent, ok bool, err error) {
	if off >= size {
		return Extent{}, false, nil
	}

	data, err := f.nextData(off)
	if err != nil {
		return Extent{}, false, fmt.Errorf("could not find data extent at or after %d: %w", off, err)
	}
	if data.EndOfExtents || data.Offset >= size {
		return Extent{}, false, nil
	}

	end := size
	hole, err := f.nextHole(data.Offset)
	if err != nil {
		return Extent{}, false, fmt.Errorf("could not find hole at or after %d: %w", data.Offset, err)
	}
	if !hole.EndOfExtents && hole.Offset < size {
		end = hole.Offset
	}
	if end <= data.Offset {
		return Extent{}, false, fmt.Errorf("invalid extent [%d, %d) reported by filesystem", data.Offset, end)
	}

	return Extent{Start: data.Offset, End: end, Kind: ExtentData}, true, nil
}

// ListExtents returns the data and hole extents of the file at path, in
// ascending order, covering the whole file. sparse reports if the extents come
// from the filesystem or from the dense fallback.
func ListExtents(path string) (extents []Extent, sparse bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, false, fmt.Errorf("could not get file size: %w", err)
	}

	finder, sparse, err := newExtentFinder(f, size)
	if err != nil {
		return nil, false, err
	}

	pos := int64(0)
	for pos < size {
		ext, ok, err := dataExtent(finder, pos, size)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		if ext.Start > pos {
			extents = append(extents, Extent{Start: pos, End: ext.Start, Kind: ExtentHole})
		}
		extents = append(extents, ext)
		pos = ext.End
	}
	if pos < size {
		extents = append(extents, Extent{Start: pos, End: size, Kind: ExtentHole})
	}

	return extents, sparse, nil
}
