package pane

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/input"
	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
	"github.com/redsalamander/folderview/render"
)

// fakeShaper shapes text with fixed metrics, standing in for the real
// text engine in headless tests.
type fakeShaper struct {
	shaped int
}

func (s *fakeShaper) Measure(sample string, role layout.FontRole) (float64, float64) {
	return 7, 16
}

func (s *fakeShaper) Shape(text string, maxWidth, maxHeight float64, role layout.FontRole) *models.TextLayout {
	s.shaped++
	return &models.TextLayout{
		Text:      text,
		WidthDip:  float64(len(text)) * 7,
		HeightDip: 16,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}
}

type testDevice struct {
	id iconcache.DeviceID
}

func (d *testDevice) ID() iconcache.DeviceID                             { return d.id }
func (d *testDevice) BeginDraw()                                         {}
func (d *testDevice) Clear(models.Rect, render.Color)                    {}
func (d *testDevice) FillRect(models.Rect, render.Color)                 {}
func (d *testDevice) DrawRectOutline(models.Rect, render.Color, float64) {}
func (d *testDevice) FillRoundedRect(models.Rect, float64, render.Color) {}
func (d *testDevice) DrawTextLayout(*models.TextLayout, float64, float64, render.Color) {
}
func (d *testDevice) DrawBitmap(*iconcache.Bitmap, models.Rect, float64) {}
func (d *testDevice) EndDraw() error                                     { return nil }

func (d *testDevice) ConvertIcon(plugin.IconHandle, float64) (interface{}, int64, error) {
	return struct{}{}, 512, nil
}

func (d *testDevice) CreatePlaceholder(render.PlaceholderKind) (*iconcache.Bitmap, error) {
	return nil, errors.New("no placeholders in tests")
}

func (d *testDevice) Present(*render.PixelRect, *render.ScrollRect) error { return nil }
func (d *testDevice) Resize(int, int) error                               { return nil }
func (d *testDevice) Release()                                            {}

type testBackend struct{ next iconcache.DeviceID }

func (b *testBackend) CreateDevice(w, h int) (render.Device, error) {
	b.next++
	return &testDevice{id: b.next}, nil
}

func (b *testBackend) DPI() float64 { return 1 }

type extractorStub struct{}

func (extractorStub) QueryIconIndexByExtension(extension string, attrs plugin.FileAttributes) (int32, bool) {
	var sum int32
	for _, b := range []byte(extension) {
		sum = sum*31 + int32(b)
	}
	if sum < 0 {
		sum = -sum
	}
	return sum + 1, true
}

func (extractorStub) QuerySysIconIndexForPath(path string, flags int, overlays bool) (int32, bool) {
	return 99, true
}

func (extractorStub) ExtractSystemIcon(iconIndex int32, sizeDip float64) (plugin.IconHandle, error) {
	return stubHandle{}, nil
}

type stubHandle struct{}

func (stubHandle) Release() {}

func entriesNamed(names []string, dirs int) []fsadapter.Entry {
	out := make([]fsadapter.Entry, 0, len(names))
	for i, name := range names {
		var attrs plugin.FileAttributes
		if i < dirs {
			attrs = plugin.AttrDirectory
		}
		out = append(out, fsadapter.Entry{Name: name, Attributes: attrs, SizeBytes: uint64(i)})
	}
	return out
}

func newTestPane(t *testing.T, source *fsadapter.MemSource, cb Callbacks) *Pane {
	t.Helper()
	cache := iconcache.New(extractorStub{}, 1<<20, nil)
	p := New(source, &testBackend{}, &fakeShaper{}, cache, cb)
	p.SetClientSize(640, 480)
	t.Cleanup(p.Close)
	return p
}

// pump drains the UI queue until cond holds or the deadline passes.
func pump(t *testing.T, p *Pane, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		p.Drain()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("condition never reached while pumping UI queue")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSetFolderPopulatesModel(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/docs", entriesNamed([]string{"sub", "b.txt", "a.txt"}, 1))

	var completed []string
	var paths []string
	p := newTestPane(t, source, Callbacks{
		EnumerationCompleted: func(folder string) { completed = append(completed, folder) },
		PathChanged:          func(path string) { paths = append(paths, path) },
	})

	p.SetFolder("/docs")
	pump(t, p, func() bool { return p.Model().Len() == 3 })

	items := p.Model().Items()
	if !items[0].IsDirectory || items[0].DisplayName != "sub" {
		t.Fatalf("item 0 = %+v, want directory \"sub\" first", items[0])
	}
	if items[1].DisplayName != "a.txt" || items[2].DisplayName != "b.txt" {
		t.Fatalf("files out of order: %q, %q", items[1].DisplayName, items[2].DisplayName)
	}
	if len(completed) != 1 || completed[0] != "/docs" {
		t.Fatalf("enumerationCompleted = %v, want [/docs]", completed)
	}
	if len(paths) != 1 || paths[0] != "/docs" {
		t.Fatalf("pathChanged = %v, want [/docs]", paths)
	}
	if p.Overlay().Current() != nil {
		t.Fatal("overlay visible after a fast successful enumeration")
	}
}

func TestForceRefreshPreservesScrollFocusAndLayouts(t *testing.T) {
	names := make([]string, 300)
	for i := range names {
		names[i] = "file-" + string(rune('a'+i%26)) + "-" + itoa(i) + ".txt"
	}
	source := fsadapter.NewMemSource()
	source.SetFolder("/big", entriesNamed(names, 0))

	p := newTestPane(t, source, Callbacks{})
	p.SetFolder("/big")
	pump(t, p, func() bool { return p.Model().Len() == 300 })

	// Scroll a few columns in and focus an item.
	target := p.Engine().SnapOffsetToColumn(3 * p.Engine().ColumnStride())
	p.Scroll(target)
	p.Model().FocusIndex(42)
	focusedName := p.Model().Items()[42].DisplayName

	// Let idle shaping settle, then count shaped layouts.
	pump(t, p, func() bool { return true })
	shapedBefore := 0
	for _, it := range p.Model().Items() {
		if it.LabelLayout != nil {
			shapedBefore++
		}
	}
	if shapedBefore == 0 {
		t.Fatal("no layouts shaped before refresh")
	}

	p.ForceRefresh()
	pump(t, p, func() bool { return p.Generation() == 2 && p.Model().Len() == 300 })
	p.Drain()

	if got := p.Engine().HorizontalOffset(); got != target {
		t.Fatalf("scroll offset = %v after refresh, want %v", got, target)
	}
	if p.Model().FocusedIndex() != 42 || p.Model().Items()[42].DisplayName != focusedName {
		t.Fatalf("focus = %d (%q), want 42 (%q)",
			p.Model().FocusedIndex(), p.Model().Items()[p.Model().FocusedIndex()].DisplayName, focusedName)
	}

	reused := 0
	for _, it := range p.Model().Items() {
		if it.LabelLayout != nil {
			reused++
		}
	}
	if reused < shapedBefore*95/100 {
		t.Fatalf("only %d/%d layouts survived an identical refresh, want >= 95%%", reused, shapedBefore)
	}
}

func TestFailedEnumerationShowsOverlayAndKeepsPane(t *testing.T) {
	source := fsadapter.NewMemSource()
	p := newTestPane(t, source, Callbacks{})

	p.SetFolder("/gone")
	pump(t, p, func() bool { return p.Overlay().Current() != nil })

	o := p.Overlay().Current()
	if o.Title != "Disconnected" {
		t.Fatalf("overlay title = %q, want Disconnected for an unreachable path", o.Title)
	}

	// The pane stays usable: a later good folder enumerates normally.
	source.SetFolder("/ok", entriesNamed([]string{"x"}, 0))
	p.SetFolder("/ok")
	pump(t, p, func() bool { return p.Model().Len() == 1 })
}

func TestIconsResolveAndApply(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/icons", entriesNamed([]string{"a.txt", "b.txt", "c.bin"}, 0))

	p := newTestPane(t, source, Callbacks{})
	// Create the device so icon loading is not deferred.
	if err := p.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	p.SetFolder("/icons")
	pump(t, p, func() bool {
		items := p.Model().Items()
		if len(items) != 3 {
			return false
		}
		for _, it := range items {
			if it.Icon == nil {
				return false
			}
		}
		return true
	})

	items := p.Model().Items()
	if items[0].Icon != items[1].Icon {
		t.Fatal("items sharing .txt got different bitmap objects")
	}
	if items[0].Icon == items[2].Icon {
		t.Fatal(".txt and .bin share a bitmap")
	}
}

func TestFocusMemoryRestoresAcrossNavigation(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/a", entriesNamed([]string{"one", "two", "three"}, 0))
	source.SetFolder("/b", entriesNamed([]string{"x"}, 0))

	p := newTestPane(t, source, Callbacks{})
	p.SetStorageRoot("/")

	p.SetFolder("/a")
	pump(t, p, func() bool { return p.Model().Len() == 3 })
	p.Model().FocusIndex(2)
	wantName := p.Model().Items()[2].DisplayName

	p.SetFolder("/b")
	pump(t, p, func() bool { return p.Model().Len() == 1 })

	p.SetFolder("/a")
	pump(t, p, func() bool { return p.Model().Len() == 3 })

	focused := p.Model().FocusedIndex()
	if focused < 0 || p.Model().Items()[focused].DisplayName != wantName {
		t.Fatalf("focus restored to %d, want item named %q", focused, wantName)
	}
}

func TestEscapeDuringBusyCancelsEnumeration(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/slow", entriesNamed([]string{"a"}, 0))
	release := make(chan struct{})
	source.BorrowHook = func(ctx context.Context, path string) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return errors.New("canceled")
		}
	}

	p := newTestPane(t, source, Callbacks{})
	p.SetFolder("/slow")
	afterRequest := p.Generation()

	pump(t, p, func() bool {
		o := p.Overlay().Current()
		return o != nil && o.Kind.String() == "busy"
	})

	p.Input().HandleKey(input.KeyEvent{Key: input.KeyEscape})
	p.Drain()

	if p.Generation() <= afterRequest {
		t.Fatalf("generation = %d, want advanced past %d", p.Generation(), afterRequest)
	}
	o := p.Overlay().Current()
	if o == nil || o.Title != "Enumeration canceled" {
		t.Fatalf("overlay after cancel = %+v, want canceled information", o)
	}
	close(release)

	// A fresh request still works.
	p.SetFolder("/slow")
	pump(t, p, func() bool { return p.Model().Len() == 1 })
}

func TestAdoptEmptyFolder(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/empty", nil)

	p := newTestPane(t, source, Callbacks{})

	completed := false
	p.cb.EnumerationCompleted = func(string) { completed = true }
	p.SetFolder("/empty")
	pump(t, p, func() bool { return completed })

	if p.Model().Len() != 0 {
		t.Fatalf("model len = %d, want 0", p.Model().Len())
	}
	if _, hit := p.Engine().HitTest(p.Model().Items(), 50, 50); hit {
		t.Fatal("hit test returned an item in an empty folder")
	}
	if err := p.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame on empty folder: %v", err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
