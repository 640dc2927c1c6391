// Package icons implements the Win32 icon-extraction ABI
// (plugin.IconExtractor) backing a real shell32-hosted pane on Windows.
//go:build windows

package icons

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/redsalamander/folderview/plugin"
)

var (
	shell32            = windows.NewLazySystemDLL("shell32.dll")
	user32             = windows.NewLazySystemDLL("user32.dll")
	procSHGetFileInfoW = shell32.NewProc("SHGetFileInfoW")
	procExtractIconExW = shell32.NewProc("ExtractIconExW")
	procDestroyIcon    = user32.NewProc("DestroyIcon")
)

const (
	shgfiSysIconIndex      = 0x000004000
	shgfiSmallIcon         = 0x000000001
	shgfiLargeIcon         = 0x000000000
	shgfiUseFileAttributes = 0x000000010

	fileAttributeNormal    = 0x80
	fileAttributeDirectory = 0x10
)

type shFileInfo struct {
	hIcon         uintptr
	iIcon         int32
	dwAttributes  uint32
	szDisplayName [260]uint16
	szTypeName    [80]uint16
}

// ShellExtractor implements plugin.IconExtractor via shell32's
// SHGetFileInfoW/ExtractIconExW, falling back to the COM per-file path
// (comshell.go) for extensions that require it.
type ShellExtractor struct {
	small bool
	com   *comExtractor
}

// NewShellExtractor creates an extractor producing small (16dip) or large
// (32dip) icon handles, with an initialized COM fallback for per-file
// lookups.
func NewShellExtractor(small bool) (*ShellExtractor, error) {
	com, err := newComExtractor()
	if err != nil {
		return nil, err
	}
	return &ShellExtractor{small: small, com: com}, nil
}

func (e *ShellExtractor) QueryIconIndexByExtension(extension string, attrs plugin.FileAttributes) (int32, bool) {
	isDir := attrs.Has(plugin.AttrDirectory)
	return sysIconIndexForPath("file"+extension, isDir, e.small)
}

func (e *ShellExtractor) QuerySysIconIndexForPath(path string, flags int, overlays bool) (int32, bool) {
	if e.com != nil {
		if idx, ok := e.com.queryIconIndex(path, overlays); ok {
			return idx, true
		}
	}
	return sysIconIndexForPath(path, false, e.small)
}

func (e *ShellExtractor) ExtractSystemIcon(iconIndex int32, sizeDip float64) (plugin.IconHandle, error) {
	small := sizeDip <= 16
	return extractSystemIcon("shell32.dll", iconIndex, small)
}

func sysIconIndexForPath(path string, isDirectory bool, small bool) (int32, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, false
	}

	attrs := uint32(fileAttributeNormal)
	if isDirectory {
		attrs = fileAttributeDirectory
	}

	flags := uint32(shgfiSysIconIndex | shgfiUseFileAttributes)
	if small {
		flags |= shgfiSmallIcon
	} else {
		flags |= shgfiLargeIcon
	}

	var info shFileInfo
	ret, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(p)),
		uintptr(attrs),
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		uintptr(flags),
	)
	if ret == 0 {
		return 0, false
	}
	return info.iIcon, true
}

// sysIconIndexForPathAttrFree queries the real per-file icon index for an
// existing path, without SHGFI_USEFILEATTRIBUTES, used for extensions
// whose icon varies per file (.exe, .lnk) rather than by extension alone.
func sysIconIndexForPathAttrFree(path string) (int32, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, false
	}

	var info shFileInfo
	ret, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(p)),
		0,
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		uintptr(shgfiSysIconIndex),
	)
	if ret == 0 {
		return 0, false
	}
	return info.iIcon, true
}

// handleIcon is an opaque Win32 HICON, released via DestroyIcon.
type handleIcon struct {
	handle uintptr
}

func (h *handleIcon) Release() {
	if h.handle == 0 {
		return
	}
	procDestroyIcon.Call(h.handle)
	h.handle = 0
}

func extractSystemIcon(modulePath string, iconIndex int32, small bool) (plugin.IconHandle, error) {
	p, err := windows.UTF16PtrFromString(modulePath)
	if err != nil {
		return nil, err
	}

	var large, smallHandle uintptr
	n, _, callErr := procExtractIconExW.Call(
		uintptr(unsafe.Pointer(p)),
		uintptr(iconIndex),
		uintptr(unsafe.Pointer(&large)),
		uintptr(unsafe.Pointer(&smallHandle)),
		1,
	)
	if n == 0 {
		return nil, callErr
	}

	if small {
		if large != 0 {
			procDestroyIcon.Call(large)
		}
		if smallHandle == 0 {
			return nil, syscall.EINVAL
		}
		return &handleIcon{handle: smallHandle}, nil
	}
	if smallHandle != 0 {
		procDestroyIcon.Call(smallHandle)
	}
	if large == 0 {
		return nil, syscall.EINVAL
	}
	return &handleIcon{handle: large}, nil
}

var _ plugin.IconExtractor = (*ShellExtractor)(nil)
