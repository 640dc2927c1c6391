package fsadapter

import (
	"context"
	"os"
	"sync"

	"github.com/redsalamander/folderview/plugin"
)

// MemSource is an in-process plugin.DirectoryListingSource serving fixed
// entries per folder, used by tests. BorrowHook, when set, runs inside Borrow before the listing is
// built, letting tests inject latency or failures the way a network
// backend would exhibit them.
type MemSource struct {
	mu      sync.Mutex
	folders map[string][]Entry

	BorrowHook func(ctx context.Context, path string) error
}

// NewMemSource creates an empty in-memory listing source.
func NewMemSource() *MemSource {
	return &MemSource{folders: make(map[string][]Entry)}
}

// SetFolder installs entries as the listing Borrow returns for path.
func (s *MemSource) SetFolder(path string, entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[path] = entries
}

func (s *MemSource) Borrow(ctx context.Context, path string, mode plugin.ListingMode) (plugin.Listing, error) {
	if s.BorrowHook != nil {
		if err := s.BorrowHook(ctx, path); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	entries, ok := s.folders[path]
	s.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return newMemListing(entries), nil
}

func (s *MemSource) GetItemProperties(ctx context.Context, path string) (*plugin.ItemProperties, error) {
	return nil, plugin.ErrNotSupported
}

func (s *MemSource) CopyItems(ctx context.Context, req plugin.FileOperationRequest) error {
	return plugin.ErrNotSupported
}

func (s *MemSource) MoveItems(ctx context.Context, req plugin.FileOperationRequest) error {
	return plugin.ErrNotSupported
}

func (s *MemSource) DeleteItems(ctx context.Context, req plugin.FileOperationRequest) error {
	return plugin.ErrNotSupported
}

func (s *MemSource) RenameItem(ctx context.Context, path, newName string, flags plugin.FileOperationFlags) error {
	return plugin.ErrNotSupported
}

var _ plugin.DirectoryListingSource = (*MemSource)(nil)
