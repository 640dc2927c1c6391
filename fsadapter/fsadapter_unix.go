//go:build !windows

package fsadapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redsalamander/folderview/plugin"
)

// LocalFS is a plugin.DirectoryListingSource backed directly by the local
// filesystem, used by cmd/panedemo in place of a real plugin.
type LocalFS struct{}

// NewLocalFS constructs a local-filesystem listing source.
func NewLocalFS() *LocalFS { return &LocalFS{} }

func (LocalFS) Borrow(ctx context.Context, path string, mode plugin.ListingMode) (plugin.Listing, error) {
	direntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(direntries))
	for _, de := range direntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:          de.Name(),
			Attributes:    attributesFor(de, info),
			LastWriteTime: info.ModTime().UnixNano(),
			SizeBytes:     uint64(info.Size()),
		})
	}
	return newMemListing(entries), nil
}

func attributesFor(de os.DirEntry, info os.FileInfo) plugin.FileAttributes {
	var a plugin.FileAttributes
	if de.IsDir() {
		a |= plugin.AttrDirectory
	}
	if info.Mode()&0200 == 0 {
		a |= plugin.AttrReadonly
	}
	if len(de.Name()) > 0 && de.Name()[0] == '.' {
		a |= plugin.AttrHidden
	}
	if info.Mode()&os.ModeSymlink != 0 {
		a |= plugin.AttrReparsePoint
	}
	return a
}

func (LocalFS) GetItemProperties(ctx context.Context, path string) (*plugin.ItemProperties, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &plugin.ItemProperties{
		Title: info.Name(),
		Sections: []plugin.PropertySection{{
			Title: "General",
			Fields: []plugin.PropertyField{
				{Key: "Size", Value: fmt.Sprintf("%d bytes", info.Size())},
				{Key: "Modified", Value: info.ModTime().String()},
			},
		}},
	}, nil
}

func (LocalFS) CopyItems(ctx context.Context, req plugin.FileOperationRequest) error {
	return plugin.ErrNotSupported
}

func (LocalFS) MoveItems(ctx context.Context, req plugin.FileOperationRequest) error {
	for _, src := range req.Sources {
		dst := filepath.Join(req.Destination, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			if req.Flags&plugin.FlagContinueOnError != 0 {
				continue
			}
			return err
		}
	}
	return nil
}

func (LocalFS) DeleteItems(ctx context.Context, req plugin.FileOperationRequest) error {
	for _, src := range req.Sources {
		var err error
		if req.Flags&plugin.FlagRecursive != 0 {
			err = os.RemoveAll(src)
		} else {
			err = os.Remove(src)
		}
		if err != nil && req.Flags&plugin.FlagContinueOnError == 0 {
			return err
		}
	}
	return nil
}

func (LocalFS) RenameItem(ctx context.Context, path, newName string, flags plugin.FileOperationFlags) error {
	dst := filepath.Join(filepath.Dir(path), newName)
	return os.Rename(path, dst)
}

var _ plugin.DirectoryListingSource = LocalFS{}
