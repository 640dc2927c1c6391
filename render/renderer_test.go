package render

import (
	"errors"
	"testing"

	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// presentCall records one Present invocation: full (nil dirty) or partial.
type presentCall struct {
	full   bool
	dirty  PixelRect
	scroll *ScrollRect
}

type fakeDevice struct {
	id       iconcache.DeviceID
	presents []presentCall

	failNextPresent bool
	failNextEndDraw bool
	released        bool
}

func (d *fakeDevice) ID() iconcache.DeviceID { return d.id }
func (d *fakeDevice) BeginDraw()             {}
func (d *fakeDevice) Clear(models.Rect, Color)   {}
func (d *fakeDevice) FillRect(models.Rect, Color) {}
func (d *fakeDevice) DrawRectOutline(models.Rect, Color, float64)   {}
func (d *fakeDevice) FillRoundedRect(models.Rect, float64, Color)   {}
func (d *fakeDevice) DrawTextLayout(*models.TextLayout, float64, float64, Color) {}
func (d *fakeDevice) DrawBitmap(*iconcache.Bitmap, models.Rect, float64)         {}

func (d *fakeDevice) EndDraw() error {
	if d.failNextEndDraw {
		d.failNextEndDraw = false
		return errors.New("end draw failed")
	}
	return nil
}

func (d *fakeDevice) ConvertIcon(handle plugin.IconHandle, sizeDip float64) (interface{}, int64, error) {
	return struct{}{}, 1024, nil
}

func (d *fakeDevice) CreatePlaceholder(kind PlaceholderKind) (*iconcache.Bitmap, error) {
	return &iconcache.Bitmap{IconIndex: -2 - int32(kind), Device: d.id, ByteSize: 256}, nil
}

func (d *fakeDevice) Present(dirty *PixelRect, scroll *ScrollRect) error {
	if d.failNextPresent {
		d.failNextPresent = false
		return errors.New("present failed")
	}
	call := presentCall{full: dirty == nil}
	if dirty != nil {
		call.dirty = *dirty
	}
	call.scroll = scroll
	d.presents = append(d.presents, call)
	return nil
}

func (d *fakeDevice) Resize(int, int) error { return nil }
func (d *fakeDevice) Release()              { d.released = true }

type fakeBackend struct {
	nextID  iconcache.DeviceID
	devices []*fakeDevice

	failCreate bool
}

func (b *fakeBackend) CreateDevice(w, h int) (Device, error) {
	if b.failCreate {
		return nil, errors.New("create failed")
	}
	b.nextID++
	d := &fakeDevice{id: b.nextID}
	b.devices = append(b.devices, d)
	return d, nil
}

func (b *fakeBackend) DPI() float64 { return 1 }

func newTestRenderer() (*Renderer, *fakeBackend) {
	backend := &fakeBackend{}
	cache := iconcache.New(nil, 1<<20, nil)
	engine := layout.NewEngine(nil, nil, iconSizeDip)
	r := New(backend, cache, engine, nil, nil)
	_ = r.SetSize(640, 480)
	return r, backend
}

func TestFirstPresentIsAlwaysFull(t *testing.T) {
	r, backend := newTestRenderer()

	frame := Frame{Invalid: PixelRect{Left: 10, Top: 10, Right: 20, Bottom: 20}}
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	dev := backend.devices[0]
	if len(dev.presents) != 1 || !dev.presents[0].full {
		t.Fatalf("first present = %+v, want one full present", dev.presents)
	}

	// A second frame with a partial invalid rect may now present partially.
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(dev.presents) != 2 || dev.presents[1].full {
		t.Fatalf("second present = %+v, want a partial present", dev.presents)
	}
	if dev.presents[1].dirty != frame.Invalid {
		t.Fatalf("partial dirty = %+v, want %+v", dev.presents[1].dirty, frame.Invalid)
	}
}

func TestPresentFailureRecreatesDeviceThenFullPresents(t *testing.T) {
	r, backend := newTestRenderer()

	frame := Frame{Invalid: PixelRect{Right: 640, Bottom: 480}}
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	first := backend.devices[0]
	first.failNextPresent = true
	if err := r.Render(nil, frame); err == nil {
		t.Fatal("expected render failure when present fails")
	}
	if !first.released {
		t.Fatal("failed device was not released")
	}
	if r.HasDevice() {
		t.Fatal("device survived a present failure")
	}

	// Next frame: new swap chain, full present succeeds.
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render after device loss: %v", err)
	}
	if len(backend.devices) != 2 {
		t.Fatalf("device count = %d, want 2", len(backend.devices))
	}
	second := backend.devices[1]
	if len(second.presents) != 1 || !second.presents[0].full {
		t.Fatalf("post-recovery present = %+v, want full", second.presents)
	}

	// And partial presents re-enable afterward.
	partial := Frame{Invalid: PixelRect{Left: 1, Top: 1, Right: 5, Bottom: 5}}
	if err := r.Render(nil, partial); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if last := second.presents[len(second.presents)-1]; last.full {
		t.Fatal("partial present did not re-enable after recovery")
	}
}

func TestDeviceLossDropsCachedBitmaps(t *testing.T) {
	backend := &fakeBackend{}
	cache := iconcache.New(nil, 1<<20, nil)
	engine := layout.NewEngine(nil, nil, iconSizeDip)
	r := New(backend, cache, engine, nil, nil)
	_ = r.SetSize(100, 100)

	frame := Frame{Invalid: PixelRect{Right: 100, Bottom: 100}}
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	bmp, err := r.ConvertIcon(noopHandle{}, 7, 16)
	if err != nil {
		t.Fatalf("ConvertIcon: %v", err)
	}
	if got, ok := cache.GetCachedBitmap(7, bmp.Device); !ok || got != bmp {
		t.Fatal("converted bitmap not cached under (iconIndex, device)")
	}

	backend.devices[0].failNextEndDraw = true
	_ = r.Render(nil, frame)

	if _, ok := cache.GetCachedBitmap(7, bmp.Device); ok {
		t.Fatal("device-scoped bitmap survived device loss")
	}
}

func TestScrollRectForwardedOnPartialPresent(t *testing.T) {
	r, backend := newTestRenderer()

	full := Frame{Invalid: PixelRect{Right: 640, Bottom: 480}}
	if err := r.Render(nil, full); err != nil {
		t.Fatalf("Render: %v", err)
	}

	scroll := &ScrollRect{Rect: PixelRect{Right: 640, Bottom: 400}, OffsetY: 40}
	frame := Frame{Invalid: PixelRect{Top: 400, Right: 640, Bottom: 480}, Scroll: scroll}
	if err := r.Render(nil, frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	dev := backend.devices[0]
	last := dev.presents[len(dev.presents)-1]
	if last.full || last.scroll != scroll {
		t.Fatalf("scrolled present = %+v, want partial with scroll rect", last)
	}
}

func TestRainbowTintStableAndOpaque(t *testing.T) {
	a := RainbowTint(1234)
	b := RainbowTint(1234)
	if a != b {
		t.Fatal("RainbowTint not stable for equal hashes")
	}
	if a.A != 1 {
		t.Fatalf("tint alpha = %v, want 1", a.A)
	}
	if RainbowTint(1234) == RainbowTint(1294) {
		t.Fatal("hashes 60 degrees apart produced identical tints")
	}
}

func TestAcquireBackgroundColorSpareSlot(t *testing.T) {
	theme := DefaultTheme()
	// The palette always holds one spare entry past the active set, so
	// reading activeBgIndex+1 at the last real slot stays in bounds.
	for i := 0; i < 8; i++ {
		_ = theme.AcquireBackgroundColor()
		theme.AdvanceBackground()
	}
}

type noopHandle struct{}

func (noopHandle) Release() {}
