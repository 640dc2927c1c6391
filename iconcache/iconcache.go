// Package iconcache implements the process-wide, two-level icon cache:
// extension -> icon index, and
// (icon index, device) -> GPU-ready bitmap.
package iconcache

import (
	"container/list"
	"strings"
	"sync"

	"github.com/redsalamander/folderview/plugin"
)

// DirectorySentinel is the synthetic extension key used for directories
// that are not in the special-folder set.
const DirectorySentinel = "<directory>"

// perFileExtensions is the hard-coded whitelist of extensions whose icon
// depends on the file itself and therefore bypasses the extension cache.
var perFileExtensions = map[string]bool{
	".exe": true,
	".dll": true,
	".ico": true,
	".lnk": true,
	".url": true,
}

// DeviceID identifies a rendering device; device-scoped bitmaps are keyed
// by (iconIndex, DeviceID) and dropped in bulk when a device is lost.
type DeviceID uint64

// Bitmap is a GPU-ready icon bitmap, scoped to one DeviceID.
type Bitmap struct {
	IconIndex int32
	Device    DeviceID
	ByteSize  int64
	// Native is the backend-specific bitmap object (e.g. an ID2D1Bitmap1
	// pointer); opaque to this package.
	Native interface{}
}

// SpecialFolderPredicate reports whether path is a "special folder" (e.g.
// Desktop, Documents) that must use per-file icon lookup even though it is
// a directory.
type SpecialFolderPredicate func(path string) bool

type deviceBitmapKey struct {
	iconIndex int32
	device    DeviceID
}

// Cache is the process-wide icon cache singleton.
type Cache struct {
	extractor plugin.IconExtractor
	isSpecial SpecialFolderPredicate

	extMu  sync.RWMutex
	extMap map[string]int32 // ordinal-case-insensitive extension -> icon index

	budgetBytes int64

	devMu     sync.Mutex // UI-thread only in practice, but guarded defensively
	devMap    map[deviceBitmapKey]*list.Element
	devOrder  *list.List // front = most recently used
	usedBytes int64
}

// New creates a process-wide icon cache with the given byte budget. extractor
// may be nil until a real OS backend is wired (tests use a fake).
func New(extractor plugin.IconExtractor, budgetBytes int64, isSpecial SpecialFolderPredicate) *Cache {
	if isSpecial == nil {
		isSpecial = func(string) bool { return false }
	}
	return &Cache{
		extractor:   extractor,
		isSpecial:   isSpecial,
		extMap:      make(map[string]int32),
		budgetBytes: budgetBytes,
		devMap:      make(map[deviceBitmapKey]*list.Element),
		devOrder:    list.New(),
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(ext)
}

// GetIconIndex returns a previously cached icon index for extension, if any.
func (c *Cache) GetIconIndex(extension string) (int32, bool) {
	c.extMu.RLock()
	defer c.extMu.RUnlock()
	idx, ok := c.extMap[normalizeExt(extension)]
	return idx, ok
}

// QueryIconIndex returns the cached index, or performs a synchronous OS
// query and caches the result.
func (c *Cache) QueryIconIndex(extension string, attrs plugin.FileAttributes) (int32, bool) {
	key := normalizeExt(extension)

	c.extMu.RLock()
	idx, ok := c.extMap[key]
	c.extMu.RUnlock()
	if ok {
		return idx, true
	}

	if c.extractor == nil {
		return 0, false
	}
	idx, ok = c.extractor.QueryIconIndexByExtension(extension, attrs)
	if !ok {
		return 0, false
	}

	c.extMu.Lock()
	c.extMap[key] = idx
	c.extMu.Unlock()
	return idx, true
}

// QueryIconIndexForPath resolves a per-file icon index through the OS,
// bypassing the extension cache (the result depends on the file itself).
// overlays requests link-overlay resolution for shortcuts.
func (c *Cache) QueryIconIndexForPath(path string, overlays bool) (int32, bool) {
	if c.extractor == nil {
		return 0, false
	}
	return c.extractor.QuerySysIconIndexForPath(path, 0, overlays)
}

// RequiresPerFileLookup reports whether extension is in the hard-coded
// per-file whitelist, bypassing the extension cache entirely.
func (c *Cache) RequiresPerFileLookup(extension string) bool {
	return perFileExtensions[normalizeExt(extension)]
}

// IsSpecialFolder reports whether path forces per-file lookup even for a
// directory (e.g. Desktop, Documents).
func (c *Cache) IsSpecialFolder(path string) bool {
	return c.isSpecial(path)
}

// ExtractBitmapHandle extracts the OS icon handle for iconIndex. Safe on
// any thread; may block.
func (c *Cache) ExtractBitmapHandle(iconIndex int32, sizeDip float64) (plugin.IconHandle, error) {
	if c.extractor == nil {
		return nil, plugin.ErrNotSupported
	}
	return c.extractor.ExtractSystemIcon(iconIndex, sizeDip)
}

// ConvertHandleToDeviceBitmap converts an OS icon handle into a
// device-scoped bitmap and caches it under (iconIndex, device). UI-thread
// only: the device bitmap map is not safe for concurrent writers other
// than the UI thread, though reads take a lock defensively.
func (c *Cache) ConvertHandleToDeviceBitmap(convert func(plugin.IconHandle) (interface{}, int64, error), handle plugin.IconHandle, iconIndex int32, device DeviceID) (*Bitmap, error) {
	native, byteSize, err := convert(handle)
	if err != nil {
		return nil, err
	}

	bmp := &Bitmap{IconIndex: iconIndex, Device: device, ByteSize: byteSize, Native: native}
	c.insertBitmap(bmp)
	return bmp, nil
}

// insertBitmap inserts bmp into the LRU, evicting least-recently-used
// entries until the cache is back under budget.
func (c *Cache) insertBitmap(bmp *Bitmap) {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	key := deviceBitmapKey{iconIndex: bmp.IconIndex, device: bmp.Device}
	if el, ok := c.devMap[key]; ok {
		old := el.Value.(*Bitmap)
		c.usedBytes -= old.ByteSize
		el.Value = bmp
		c.devOrder.MoveToFront(el)
		c.usedBytes += bmp.ByteSize
	} else {
		el := c.devOrder.PushFront(bmp)
		c.devMap[key] = el
		c.usedBytes += bmp.ByteSize
	}

	for c.usedBytes > c.budgetBytes && c.devOrder.Len() > 0 {
		back := c.devOrder.Back()
		if back == nil {
			break
		}
		evicted := back.Value.(*Bitmap)
		c.devOrder.Remove(back)
		delete(c.devMap, deviceBitmapKey{iconIndex: evicted.IconIndex, device: evicted.Device})
		c.usedBytes -= evicted.ByteSize
	}
}

// GetCachedBitmap returns a previously converted bitmap for (iconIndex,
// device), bumping its LRU recency.
func (c *Cache) GetCachedBitmap(iconIndex int32, device DeviceID) (*Bitmap, bool) {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	el, ok := c.devMap[deviceBitmapKey{iconIndex: iconIndex, device: device}]
	if !ok {
		return nil, false
	}
	c.devOrder.MoveToFront(el)
	return el.Value.(*Bitmap), true
}

// ClearDeviceCache drops every bitmap scoped to device (device lost/released).
func (c *Cache) ClearDeviceCache(device DeviceID) {
	c.devMu.Lock()
	defer c.devMu.Unlock()

	for key, el := range c.devMap {
		if key.device != device {
			continue
		}
		bmp := el.Value.(*Bitmap)
		c.devOrder.Remove(el)
		c.usedBytes -= bmp.ByteSize
		delete(c.devMap, key)
	}
}

// UsedBytes returns the current cache occupancy, for diagnostics/tests.
func (c *Cache) UsedBytes() int64 {
	c.devMu.Lock()
	defer c.devMu.Unlock()
	return c.usedBytes
}
