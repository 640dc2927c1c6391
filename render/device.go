// Package render implements the pane's partial-invalidation render loop:
// device resource management over an opaque 2D/text-draw backend,
// per-item drawing, and flip-model presentation with dirty and scroll
// rectangles plus a full-present correctness fallback.
package render

import (
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// Color is a straight-alpha color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// WithAlpha returns the color with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// PixelRect is a device-pixel rectangle used for invalidation and
// presentation; DIP-space geometry lives in models.Rect.
type PixelRect struct {
	Left, Top, Right, Bottom int
}

func (r PixelRect) Width() int  { return r.Right - r.Left }
func (r PixelRect) Height() int { return r.Bottom - r.Top }

func (r PixelRect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Clamp restricts r to [0,0,w,h].
func (r PixelRect) Clamp(w, h int) PixelRect {
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Right > w {
		r.Right = w
	}
	if r.Bottom > h {
		r.Bottom = h
	}
	return r
}

// Union grows r to cover o.
func (r PixelRect) Union(o PixelRect) PixelRect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	if o.Left < r.Left {
		r.Left = o.Left
	}
	if o.Top < r.Top {
		r.Top = o.Top
	}
	if o.Right > r.Right {
		r.Right = o.Right
	}
	if o.Bottom > r.Bottom {
		r.Bottom = o.Bottom
	}
	return r
}

// ScrollRect describes a backbuffer-to-backbuffer copy for a scrolled
// partial present: the source pixels at Rect offset by OffsetY land at
// Rect.
type ScrollRect struct {
	Rect    PixelRect
	OffsetY int
}

// PlaceholderKind selects which built-in placeholder bitmap to rasterize.
type PlaceholderKind int

const (
	PlaceholderFolder PlaceholderKind = iota
	PlaceholderFile
)

// Device is the opaque per-swap-chain drawing surface a Backend creates.
// All methods are UI-thread only. Draw calls happen between BeginDraw and
// EndDraw; Present submits the frame.
type Device interface {
	// ID identifies this device for (iconIndex, device) bitmap scoping.
	ID() iconcache.DeviceID

	BeginDraw()
	// Clear fills clip with the background color.
	Clear(clip models.Rect, c Color)
	FillRect(r models.Rect, c Color)
	// DrawRectOutline strokes r's border at the given width.
	DrawRectOutline(r models.Rect, c Color, strokeWidth float64)
	FillRoundedRect(r models.Rect, radiusDip float64, c Color)
	DrawTextLayout(l *models.TextLayout, xDip, yDip float64, c Color)
	DrawBitmap(b *iconcache.Bitmap, r models.Rect, alpha float64)
	// EndDraw flushes the frame's draw calls; a failure indicates device
	// loss and the renderer recreates everything.
	EndDraw() error

	// ConvertIcon turns an extracted OS icon handle into this device's
	// native bitmap object, returning its approximate byte size.
	ConvertIcon(handle plugin.IconHandle, sizeDip float64) (native interface{}, byteSize int64, err error)
	// CreatePlaceholder rasterizes the built-in folder/file placeholder
	// once into a small compatible target.
	CreatePlaceholder(kind PlaceholderKind) (*iconcache.Bitmap, error)

	// Present submits the frame. A nil dirty rect requests a full
	// present; a non-nil dirty (optionally with scroll) requests a
	// partial one.
	Present(dirty *PixelRect, scroll *ScrollRect) error

	Resize(widthPx, heightPx int) error
	Release()
}

// Backend creates devices; it stands in for the 2D factory + 3D device +
// swap-chain bundle the pane treats as an external collaborator.
type Backend interface {
	CreateDevice(widthPx, heightPx int) (Device, error)
	// DPI returns the pixels-per-DIP scale of the target surface.
	DPI() float64
}
