// Package models holds the folder view pane's core data model: items,
// the listing payload that hands enumeration results to the UI thread, and
// the sorted Item Model that owns selection, focus, and grouping state.
package models

import (
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/plugin"
)

// Rect is a DIP-space rectangle (device-independent pixels, 1/96 inch).
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

func (r Rect) Intersects(o Rect) bool {
	return !(r.Right < o.Left || r.Left > o.Right || r.Bottom < o.Top || r.Top > o.Bottom)
}

// TextLayout is a lazily-created, device-scoped shaped-text object. A nil
// *TextLayout on an Item means the layout has not been shaped yet.
type TextLayout struct {
	Text        string
	WidthDip    float64
	HeightDip   float64
	MaxWidth    float64
	MaxHeight   float64
	DeviceScope iconcache.DeviceID
}

// DisplayMode selects how much per-item text the layout engine reserves
// room for.
type DisplayMode int

const (
	Brief DisplayMode = iota
	Detailed
	ExtraDetailed
)

// SortField selects the comparator applied within each of the
// directories-then-files groups.
type SortField int

const (
	SortByNone SortField = iota
	SortByName
	SortByExtension
	SortByTime
	SortBySize
	SortByAttributes
)

// SortDirection is ascending or descending.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Item is one entry in the folder listing.
type Item struct {
	DisplayName     string
	FileAttributes  plugin.FileAttributes
	IsDirectory     bool
	IsShortcut      bool
	SizeBytes       uint64
	LastWriteTime   int64
	IconIndex       int32 // -1 until resolved
	Icon            *iconcache.Bitmap
	StableHash32    uint32
	Column          int
	Row             int
	Bounds          Rect
	LabelLayout     *TextLayout
	DetailsLayout   *TextLayout
	MetadataLayout  *TextLayout
	DetailsText     string
	ExtensionOffset uint16
	Selected        bool
	Focused         bool
	Hovered         bool
	UnsortedOrder   int
}

// Extension returns the substring from ExtensionOffset, or "" if none.
func (it *Item) Extension() string {
	if it.ExtensionOffset == 0 || int(it.ExtensionOffset) >= len(it.DisplayName) {
		return ""
	}
	return it.DisplayName[it.ExtensionOffset:]
}

// ReleaseDistantState drops the item's reconstructible state (layouts and
// icon bitmap) so it can be rebuilt lazily on re-entering the viewport.
func (it *Item) ReleaseDistantState() {
	it.LabelLayout = nil
	it.DetailsLayout = nil
	it.MetadataLayout = nil
	it.Icon = nil
}

// snapshotKey is the tuple adoptPayload compares to decide whether an old
// item's derived state can be carried forward onto its replacement.
type snapshotKey struct {
	displayName    string
	sizeBytes      uint64
	lastWriteTime  int64
	fileAttributes plugin.FileAttributes
	isDirectory    bool
	iconIndex      int32
}

func keyOf(it *Item) snapshotKey {
	return snapshotKey{
		displayName:    it.DisplayName,
		sizeBytes:      it.SizeBytes,
		lastWriteTime:  it.LastWriteTime,
		fileAttributes: it.FileAttributes,
		isDirectory:    it.IsDirectory,
		iconIndex:      it.IconIndex,
	}
}
