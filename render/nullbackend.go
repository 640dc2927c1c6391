package render

import (
	"sync/atomic"

	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// NullBackend is a no-op Backend for headless hosts and the demo binary:
// draws are discarded and presents always succeed. It keeps the whole
// pipeline (device ids, bitmap caching, partial-present gating) running
// without a GPU.
type NullBackend struct {
	dpi    float64
	nextID atomic.Uint64
}

// NewNullBackend creates a headless backend at the given pixels-per-DIP
// scale (1.0 for 96 DPI).
func NewNullBackend(dpi float64) *NullBackend {
	if dpi <= 0 {
		dpi = 1
	}
	return &NullBackend{dpi: dpi}
}

func (b *NullBackend) DPI() float64 { return b.dpi }

func (b *NullBackend) CreateDevice(widthPx, heightPx int) (Device, error) {
	return &nullDevice{id: iconcache.DeviceID(b.nextID.Add(1))}, nil
}

type nullDevice struct {
	id iconcache.DeviceID
}

func (d *nullDevice) ID() iconcache.DeviceID                                  { return d.id }
func (d *nullDevice) BeginDraw()                                              {}
func (d *nullDevice) Clear(models.Rect, Color)                                {}
func (d *nullDevice) FillRect(models.Rect, Color)                             {}
func (d *nullDevice) DrawRectOutline(models.Rect, Color, float64)             {}
func (d *nullDevice) FillRoundedRect(models.Rect, float64, Color)             {}
func (d *nullDevice) DrawTextLayout(*models.TextLayout, float64, float64, Color) {}
func (d *nullDevice) DrawBitmap(*iconcache.Bitmap, models.Rect, float64)      {}
func (d *nullDevice) EndDraw() error                                          { return nil }

func (d *nullDevice) ConvertIcon(handle plugin.IconHandle, sizeDip float64) (interface{}, int64, error) {
	// 32bpp at the requested square size.
	side := int64(sizeDip)
	return struct{}{}, side * side * 4, nil
}

func (d *nullDevice) CreatePlaceholder(kind PlaceholderKind) (*iconcache.Bitmap, error) {
	return &iconcache.Bitmap{IconIndex: -2 - int32(kind), Device: d.id, ByteSize: 1024}, nil
}

func (d *nullDevice) Present(*PixelRect, *ScrollRect) error { return nil }
func (d *nullDevice) Resize(int, int) error                 { return nil }
func (d *nullDevice) Release()                              {}
