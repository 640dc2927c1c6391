// Package enumerate implements the Enumeration Worker: one
// background goroutine per pane that borrows directory listings from the
// Directory Source Adapter, derives per-item fields, resolves icon indices
// through the shared icon cache, and posts generation-versioned payloads
// to the UI thread. It also services the icon-load deque built by the
// iconloader package, so the pane owns exactly one worker thread.
package enumerate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// cancelCheckStride is how many items the enumeration loop processes
// between cancellation/generation checks.
const cancelCheckStride = 64

// queryPoolSize bounds the transient goroutines used for parallel
// extension-icon and per-file-icon queries, scoped to one enumeration.
var queryPoolSize = runtime.GOMAXPROCS(0)

// buildListing borrows the folder's listing, builds the sorted item
// vectors, and resolves icon indices. It returns nil (and no error) when
// the run was canceled or superseded; the caller must not post anything
// in that case.
func buildListing(ctx context.Context, adapter *fsadapter.Adapter, cache *iconcache.Cache, folder string, generation uint64, current func() uint64) (*models.Payload, error) {
	entries, release, err := adapter.Enumerate(ctx, folder)
	if err != nil {
		return &models.Payload{
			Generation: generation,
			Status:     classifyError(err),
			Folder:     folder,
		}, nil
	}

	var dirs, files []*models.Item
	for i, e := range entries {
		if i%cancelCheckStride == 0 && stale(ctx, generation, current) {
			release()
			return nil, nil
		}

		it := &models.Item{
			DisplayName:    e.Name,
			FileAttributes: e.Attributes,
			IsDirectory:    e.Attributes.Has(plugin.AttrDirectory),
			SizeBytes:      e.SizeBytes,
			LastWriteTime:  e.LastWriteTime,
			IconIndex:      -1,
			StableHash32:   models.StableHash32(folder, e.Name),
		}
		if dot := strings.LastIndexByte(e.Name, '.'); dot > 0 {
			it.ExtensionOffset = uint16(dot)
			it.IsShortcut = strings.EqualFold(e.Name[dot:], ".lnk")
		}

		if it.IsDirectory {
			dirs = append(dirs, it)
		} else {
			files = append(files, it)
		}
	}

	if stale(ctx, generation, current) {
		release()
		return nil, nil
	}

	sortGroup(dirs)
	sortGroup(files)
	items := append(dirs, files...)
	for i, it := range items {
		it.UnsortedOrder = i
	}

	if !resolveIconIndices(ctx, cache, folder, items, generation, current) {
		release()
		return nil, nil
	}

	return &models.Payload{
		Generation:   generation,
		Status:       models.StatusOK,
		Folder:       folder,
		Items:        items,
		ArenaRelease: func() { release() },
	}, nil
}

func stale(ctx context.Context, generation uint64, current func() uint64) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return current() != generation
}

// sortGroup orders one of the dirs/files vectors ordinal-case-insensitive,
// case-sensitive second, arrival order last.
func sortGroup(items []*models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		la, lb := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
		if la != lb {
			return la < lb
		}
		return a.DisplayName < b.DisplayName
	})
}

// extMiss is one unique extension (or the directory sentinel) whose icon
// index must be queried from the OS, with a representative item's
// attributes; every item sharing the extension shares the resolved index.
type extMiss struct {
	attrs plugin.FileAttributes
	items []*models.Item
}

// resolveIconIndices builds and executes the icon index plan: cache
// lookups first, then unique-extension queries on a
// bounded pool, then per-file path queries. Returns false if the run went
// stale mid-plan.
func resolveIconIndices(ctx context.Context, cache *iconcache.Cache, folder string, items []*models.Item, generation uint64, current func() uint64) bool {
	if cache == nil {
		return true
	}

	extMisses := make(map[string]*extMiss)
	var perFile []*models.Item

	for i, it := range items {
		if i%cancelCheckStride == 0 && stale(ctx, generation, current) {
			return false
		}

		var key string
		switch {
		case it.IsDirectory:
			if cache.IsSpecialFolder(filepath.Join(folder, it.DisplayName)) {
				perFile = append(perFile, it)
				continue
			}
			key = iconcache.DirectorySentinel
		default:
			key = it.Extension()
			if cache.RequiresPerFileLookup(key) {
				perFile = append(perFile, it)
				continue
			}
		}

		if idx, ok := cache.GetIconIndex(key); ok {
			it.IconIndex = idx
			continue
		}
		miss, ok := extMisses[key]
		if !ok {
			miss = &extMiss{attrs: it.FileAttributes}
			extMisses[key] = miss
		}
		miss.items = append(miss.items, it)
	}

	if stale(ctx, generation, current) {
		return false
	}

	runPool(len(extMisses), func(run func(func())) {
		for ext, miss := range extMisses {
			ext, miss := ext, miss
			run(func() {
				idx, ok := cache.QueryIconIndex(ext, miss.attrs)
				if !ok {
					return
				}
				for _, it := range miss.items {
					it.IconIndex = idx
				}
			})
		}
	})

	if stale(ctx, generation, current) {
		return false
	}

	runPool(len(perFile), func(run func(func())) {
		for _, it := range perFile {
			it := it
			run(func() {
				path := filepath.Join(folder, it.DisplayName)
				if idx, ok := cache.QueryIconIndexForPath(path, it.IsShortcut); ok {
					it.IconIndex = idx
				}
			})
		}
	})

	return !stale(ctx, generation, current)
}

// runPool dispatches tasks onto at most queryPoolSize transient
// goroutines and joins them before returning.
func runPool(taskCount int, submit func(run func(func()))) {
	if taskCount == 0 {
		return
	}

	workers := queryPoolSize
	if workers > taskCount {
		workers = taskCount
	}
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan func(), taskCount)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				task()
			}
		}()
	}

	submit(func(task func()) { tasks <- task })
	close(tasks)
	wg.Wait()
}

// classifyError maps a borrow/validation failure onto the payload status
// taxonomy the overlay controller classifies.
func classifyError(err error) models.Status {
	switch {
	case errors.Is(err, fsadapter.ErrInvalidData):
		return models.StatusInvalidData
	case errors.Is(err, os.ErrPermission):
		return models.StatusAccessDenied
	case errors.Is(err, os.ErrNotExist):
		return models.StatusNetworkUnreachable
	default:
		return models.StatusUnknownError
	}
}
