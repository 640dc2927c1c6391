// Package fsadapter implements the directory source adapter:
// it validates and iterates the variable-length record buffer a
// plugin.DirectoryListingSource hands back. File names are decoded from
// UTF-16 into new Go strings; they do not alias the buffer.
package fsadapter

import (
	"context"
	"encoding/binary"
	"errors"
	"unicode/utf16"

	"github.com/redsalamander/folderview/plugin"
)

// ErrInvalidData is returned when the buffer fails validation: a
// nextEntryOffset escapes [base, base+bufferSize), or allocatedSize is
// smaller than bufferSize.
var ErrInvalidData = errors.New("fsadapter: invalid listing buffer")

const recordHeaderSize = 4 + 4 + 8 + 8 + 2 // nextEntryOffset, attrs, lastWriteTime, endOfFile, fileNameSize

// Entry is one decoded record of an arena buffer. Name is a copy decoded
// from the record's UTF-16 bytes, so it stays valid after the Listing it
// came from is closed.
type Entry struct {
	Name          string
	Attributes    plugin.FileAttributes
	LastWriteTime int64
	SizeBytes     uint64
}

// Iterator walks an arena buffer's variable-length records, decoding each
// file name into a freshly allocated string.
type Iterator struct {
	buf    []byte
	offset uint32
	limit  uint32
	done   bool
}

// NewIterator validates buf and returns a ready iterator.
// allocatedSize must be >= bufferSize (the logically-used prefix of buf);
// bufferSize must not exceed len(buf).
func NewIterator(buf []byte, bufferSize, allocatedSize uint32) (*Iterator, error) {
	if allocatedSize < bufferSize {
		return nil, ErrInvalidData
	}
	if uint32(len(buf)) < bufferSize {
		return nil, ErrInvalidData
	}
	return &Iterator{buf: buf, limit: bufferSize}, nil
}

// Next returns the next entry, or ok=false once the buffer is exhausted.
// err is non-nil (and wraps ErrInvalidData) if a record's offsets are
// corrupt.
func (it *Iterator) Next() (entry Entry, ok bool, err error) {
	if it.done || it.offset >= it.limit {
		return Entry{}, false, nil
	}
	if it.offset+recordHeaderSize > it.limit {
		return Entry{}, false, ErrInvalidData
	}

	rec := it.buf[it.offset:it.limit]
	nextEntryOffset := binary.LittleEndian.Uint32(rec[0:4])
	attrs := binary.LittleEndian.Uint32(rec[4:8])
	lastWriteTime := int64(binary.LittleEndian.Uint64(rec[8:16]))
	sizeBytes := binary.LittleEndian.Uint64(rec[16:24])
	fileNameSize := binary.LittleEndian.Uint16(rec[24:26])

	nameStart := it.offset + recordHeaderSize
	nameEnd := uint64(nameStart) + uint64(fileNameSize)
	if nameEnd > uint64(it.limit) {
		return Entry{}, false, ErrInvalidData
	}

	nameBytes := it.buf[nameStart:uint32(nameEnd)]
	name := decodeUTF16LE(nameBytes)

	entry = Entry{
		Name:          name,
		Attributes:    plugin.FileAttributes(attrs),
		LastWriteTime: lastWriteTime,
		SizeBytes:     sizeBytes,
	}

	if nextEntryOffset == 0 {
		it.done = true
		return entry, true, nil
	}

	// The next record's header must fit entirely inside the buffer; an
	// offset landing just past the limit would otherwise read as a
	// silent "exhausted" on the following call. Widened arithmetic keeps
	// a huge corrupted nextEntryOffset from wrapping past the check.
	newOffset := uint64(it.offset) + uint64(nextEntryOffset)
	if newOffset <= uint64(it.offset) || newOffset+recordHeaderSize > uint64(it.limit) {
		return Entry{}, false, ErrInvalidData
	}
	it.offset = uint32(newOffset)
	return entry, true, nil
}

func decodeUTF16LE(b []byte) string {
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(u16))
}

// Adapter borrows a listing from a plugin.DirectoryListingSource and
// exposes validated entries.
type Adapter struct {
	source plugin.DirectoryListingSource
}

// New wraps a plugin.DirectoryListingSource.
func New(source plugin.DirectoryListingSource) *Adapter {
	return &Adapter{source: source}
}

// Enumerate borrows the listing for path and decodes every entry. The
// returned close func releases the borrowed listing; the decoded
// Entry.Name strings are copies and do not depend on it.
func (a *Adapter) Enumerate(ctx context.Context, path string) (entries []Entry, close func() error, err error) {
	listing, err := a.source.Borrow(ctx, path, plugin.AllowEnumerate)
	if err != nil {
		return nil, nil, err
	}

	buf, bufferSize, allocatedSize, err := listing.Buffer()
	if err != nil {
		listing.Close()
		return nil, nil, err
	}

	it, err := NewIterator(buf, bufferSize, allocatedSize)
	if err != nil {
		listing.Close()
		return nil, nil, err
	}

	for {
		e, ok, err := it.Next()
		if err != nil {
			listing.Close()
			return nil, nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, e)
	}

	return entries, listing.Close, nil
}
