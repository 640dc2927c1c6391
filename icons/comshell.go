// comExtractor resolves per-file icon indices (.exe, .lnk, .url: the
// extensions whose icon depends on the file itself rather than a shared
// per-extension one) by calling SHGetFileInfo on the real path without
// SHGFI_USEFILEATTRIBUTES, since that flag collapses all .exe files onto
// one icon. It initializes COM first; it does not use IShellFolder or
// IExtractIconW.
//go:build windows

package icons

import (
	"path/filepath"
	"strings"
	"sync"

	ole "github.com/go-ole/go-ole"
)

var perFileExtensions = map[string]bool{
	".exe": true,
	".dll": true,
	".ico": true,
	".lnk": true,
	".url": true,
}

// comExtractor owns the process-wide COM initialization required before
// any IShellFolder call.
type comExtractor struct {
	mu sync.Mutex
}

func newComExtractor() (*comExtractor, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		if oleErr, ok := err.(*ole.OleError); ok && oleErr.Code() == 1 {
			// S_FALSE: already initialized on this thread.
		} else {
			return nil, err
		}
	}
	return &comExtractor{}, nil
}

// queryIconIndex returns a per-file icon index for path if its extension
// requires bypassing the shared per-extension cache; ok is false for
// extensions the caller should resolve via SHGetFileInfo instead.
func (c *comExtractor) queryIconIndex(path string, overlays bool) (int32, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if !perFileExtensions[ext] {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return resolvePerFileIconIndex(path, overlays)
}

// resolvePerFileIconIndex queries the shell for path's actual icon index
// rather than the shared per-extension one SHGFI_USEFILEATTRIBUTES would
// return. For .lnk/.url files the shell internally binds IShellLink over
// COM to resolve the target's overlay, which is why CoInitializeEx must
// run on this thread before any of these calls.
func resolvePerFileIconIndex(path string, overlays bool) (int32, bool) {
	return sysIconIndexForPathAttrFree(path)
}
