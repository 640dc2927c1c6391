package fsadapter

import (
	"io"

	"github.com/redsalamander/folderview/plugin"
)

// memListing is a plugin.Listing backed by an in-process arena buffer,
// used by the local-filesystem DirectoryListingSource.
type memListing struct {
	data          []byte
	bufferSize    uint32
	allocatedSize uint32
	count         uint32
}

func newMemListing(entries []Entry) *memListing {
	data, bufferSize, allocatedSize := buildArena(entries)
	return &memListing{
		data:          data,
		bufferSize:    bufferSize,
		allocatedSize: allocatedSize,
		count:         uint32(len(entries)),
	}
}

func (l *memListing) Count() (uint32, error) { return l.count, nil }

func (l *memListing) Buffer() ([]byte, uint32, uint32, error) {
	return l.data, l.bufferSize, l.allocatedSize, nil
}

func (l *memListing) Close() error { return nil }

var _ plugin.Listing = (*memListing)(nil)
var _ io.Closer = (*memListing)(nil)
