// Package plugin defines the opaque filesystem-backend ABI consumed by the
// folder view pane (DirectoryListingSource) and the icon-extraction ABI.
// Both are external collaborators: the pane never assumes a concrete
// implementation, only the capability set described here.
package plugin

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by optional operations a plugin does not implement.
var ErrNotSupported = errors.New("plugin: operation not supported")

// ListingMode selects how a listing may be used once borrowed.
type ListingMode int

const (
	// AllowEnumerate permits iterating the listing's records.
	AllowEnumerate ListingMode = iota
)

// FileAttributes is a bitset mirroring common filesystem attribute flags.
type FileAttributes uint32

const (
	AttrDirectory FileAttributes = 1 << iota
	AttrReadonly
	AttrHidden
	AttrSystem
	AttrArchive
	AttrReparsePoint
)

func (a FileAttributes) Has(flag FileAttributes) bool { return a&flag != 0 }

// Record is one decoded entry of a plugin's variable-length listing
// buffer, read from the wire layout:
//
//	struct Record {
//	    nextEntryOffset uint32
//	    fileAttributes  uint32
//	    lastWriteTime   int64
//	    endOfFile       uint64
//	    fileNameSize    uint16
//	    fileName        utf16[fileNameSize/2]
//	}
type Record struct {
	Name          string
	Attributes    FileAttributes
	LastWriteTime int64
	SizeBytes     uint64
}

// Listing is a borrowed, arena-backed directory listing. The caller must
// call Close when every name view taken from Buffer has been replaced.
type Listing interface {
	// Count returns the number of records the buffer holds.
	Count() (uint32, error)
	// Buffer returns the raw record buffer along with the logically used
	// size and the physically allocated size (bufferSize <= allocatedSize).
	Buffer() (data []byte, bufferSize uint32, allocatedSize uint32, err error)
	// Close releases the plugin-side resources backing the buffer.
	Close() error
}

// FileOperationFlags controls copy/move/delete/rename semantics.
type FileOperationFlags uint32

const (
	FlagRecursive FileOperationFlags = 1 << iota
	FlagUseRecycleBin
	FlagAllowOverwrite
	FlagAllowReplaceReadonly
	FlagContinueOnError
)

// FileOperationRequest describes a batch file operation.
type FileOperationRequest struct {
	Sources     []string
	Destination string
	Flags       FileOperationFlags
}

// PropertySection is one grouping within an item's properties payload.
type PropertySection struct {
	Title  string
	Fields []PropertyField
}

// PropertyField is a single key/value row within a PropertySection.
type PropertyField struct {
	Key   string
	Value string
}

// ItemProperties is the parsed form of a plugin's optional properties JSON.
type ItemProperties struct {
	Title    string
	Sections []PropertySection
}

// DirectoryListingSource is the pluggable filesystem backend ABI.
// The capability set is fixed; optional operations return ErrNotSupported
// when a concrete plugin does not implement them.
type DirectoryListingSource interface {
	// Borrow obtains an arena-backed listing for path. May block (e.g. on
	// network filesystems); safe to call from the enumeration worker only.
	Borrow(ctx context.Context, path string, mode ListingMode) (Listing, error)

	// GetItemProperties returns a parsed properties payload, or
	// ErrNotSupported if the plugin does not expose item properties.
	GetItemProperties(ctx context.Context, path string) (*ItemProperties, error)

	CopyItems(ctx context.Context, req FileOperationRequest) error
	MoveItems(ctx context.Context, req FileOperationRequest) error
	DeleteItems(ctx context.Context, req FileOperationRequest) error
	RenameItem(ctx context.Context, path, newName string, flags FileOperationFlags) error
}

// IconHandle is an opaque OS icon handle returned by extraction, consumed
// only by iconcache.ConvertHandleToDeviceBitmap.
type IconHandle interface {
	// Release frees the OS-side icon resource. Safe to call once.
	Release()
}

// IconExtractor is the icon-extraction ABI. Implementations must
// be safe to call from any thread; QueryIconIndexByExtension and
// QuerySysIconIndexForPath may perform a synchronous OS call.
type IconExtractor interface {
	// QueryIconIndexByExtension resolves a shared per-extension icon index.
	QueryIconIndexByExtension(extension string, attrs FileAttributes) (int32, bool)
	// QuerySysIconIndexForPath resolves a per-file icon index; flags and
	// overlays are extractor-defined (e.g. small-icon, link-overlay).
	QuerySysIconIndexForPath(path string, flags int, overlays bool) (int32, bool)
	// ExtractSystemIcon extracts the OS icon handle for iconIndex at the
	// given logical size. May block; may cross process boundaries.
	ExtractSystemIcon(iconIndex int32, sizeDip float64) (IconHandle, error)
}
