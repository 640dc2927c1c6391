package input

import (
	"testing"

	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/models"
)

func buildModel(names ...string) (*models.ItemModel, *layout.Engine) {
	items := make([]*models.Item, 0, len(names))
	for _, name := range names {
		items = append(items, &models.Item{DisplayName: name, IconIndex: -1})
	}

	m := models.NewItemModel()
	m.AdoptPayload("/test", items, 0)

	e := layout.NewEngine(nil, nil, 16)
	e.SetClientSize(400, 300)
	e.Compute(m.Items())
	return m, e
}

func char(r rune) KeyEvent { return KeyEvent{Key: KeyChar, Rune: r} }

func TestIncrementalSearchScenario(t *testing.T) {
	// With ["abc","Abd","zzz"]: type "ab" -> focus 0,
	// Right -> focus 1, Backspace -> query "a" focus stays 1, Esc clears.
	m, e := buildModel("abc", "Abd", "zzz")
	c := New(m, e, nil, nil, Callbacks{})

	c.HandleKey(char('a'))
	c.HandleKey(char('b'))
	if !c.SearchActive() || c.SearchQuery() != "ab" {
		t.Fatalf("query = %q active=%v, want \"ab\" active", c.SearchQuery(), c.SearchActive())
	}
	if m.FocusedIndex() != 0 {
		t.Fatalf("focus after \"ab\" = %d, want 0", m.FocusedIndex())
	}

	c.HandleKey(KeyEvent{Key: KeyRight})
	if m.FocusedIndex() != 1 {
		t.Fatalf("focus after Right = %d, want 1", m.FocusedIndex())
	}

	c.HandleKey(KeyEvent{Key: KeyBackspace})
	if c.SearchQuery() != "a" {
		t.Fatalf("query after Backspace = %q, want \"a\"", c.SearchQuery())
	}
	if m.FocusedIndex() != 1 {
		t.Fatalf("focus after Backspace = %d, want 1 (still matches)", m.FocusedIndex())
	}

	c.HandleKey(KeyEvent{Key: KeyEscape})
	if c.SearchActive() || c.SearchQuery() != "" {
		t.Fatalf("search still active after Esc: query %q", c.SearchQuery())
	}
}

func TestSearchIterationIsCyclic(t *testing.T) {
	m, e := buildModel("alpha-log", "beta", "gamma-log")
	c := New(m, e, nil, nil, Callbacks{})

	c.HandleKey(char('l'))
	c.HandleKey(char('o'))
	c.HandleKey(char('g'))
	if m.FocusedIndex() != 0 {
		t.Fatalf("focus = %d, want 0", m.FocusedIndex())
	}

	c.HandleKey(KeyEvent{Key: KeyRight})
	if m.FocusedIndex() != 2 {
		t.Fatalf("next match = %d, want 2", m.FocusedIndex())
	}
	c.HandleKey(KeyEvent{Key: KeyRight})
	if m.FocusedIndex() != 0 {
		t.Fatalf("cyclic wrap = %d, want 0", m.FocusedIndex())
	}
	c.HandleKey(KeyEvent{Key: KeyLeft})
	if m.FocusedIndex() != 2 {
		t.Fatalf("backward wrap = %d, want 2", m.FocusedIndex())
	}
}

func TestSpaceTogglesAndAdvances(t *testing.T) {
	m, e := buildModel("a", "b", "c")
	c := New(m, e, nil, nil, Callbacks{})

	m.FocusIndex(0)
	c.HandleKey(KeyEvent{Key: KeySpace})

	if !m.Items()[0].Selected {
		t.Fatal("item 0 not selected after Space")
	}
	if m.FocusedIndex() != 1 {
		t.Fatalf("focus = %d, want 1 (advanced)", m.FocusedIndex())
	}
}

func TestHomeEndJump(t *testing.T) {
	m, e := buildModel("a", "b", "c", "d")
	c := New(m, e, nil, nil, Callbacks{})

	m.FocusIndex(2)
	c.HandleKey(KeyEvent{Key: KeyHome})
	if m.FocusedIndex() != 0 {
		t.Fatalf("Home -> %d, want 0", m.FocusedIndex())
	}
	c.HandleKey(KeyEvent{Key: KeyEnd})
	if m.FocusedIndex() != 3 {
		t.Fatalf("End -> %d, want 3", m.FocusedIndex())
	}
}

func TestShiftArrowExtendsRange(t *testing.T) {
	m, e := buildModel("a", "b", "c", "d")
	c := New(m, e, nil, nil, Callbacks{})

	m.SelectSingle(1) // anchor = 1
	c.HandleKey(KeyEvent{Key: KeyDown, Modifiers: ModShift})
	c.HandleKey(KeyEvent{Key: KeyDown, Modifiers: ModShift})

	for i, want := range []bool{false, true, true, true} {
		if m.Items()[i].Selected != want {
			t.Fatalf("item %d selected=%v, want %v", i, m.Items()[i].Selected, want)
		}
	}
	if m.FocusedIndex() != 3 {
		t.Fatalf("focus = %d, want 3", m.FocusedIndex())
	}
}

func TestEnterActivatesFocused(t *testing.T) {
	m, e := buildModel("dir", "file")
	var activated *models.Item
	c := New(m, e, nil, nil, Callbacks{Activate: func(it *models.Item) { activated = it }})

	m.FocusIndex(1)
	c.HandleKey(KeyEvent{Key: KeyEnter})
	if activated == nil || activated.DisplayName != "file" {
		t.Fatalf("activated = %+v, want item \"file\"", activated)
	}
}

func TestBackspaceNavigatesParentOrRoot(t *testing.T) {
	m, e := buildModel("a")
	var parent, root int
	atRoot := false
	c := New(m, e, nil, nil, Callbacks{
		NavigateToParent:   func() { parent++ },
		NavigateUpFromRoot: func() { root++ },
		IsAtRoot:           func() bool { return atRoot },
	})

	c.HandleKey(KeyEvent{Key: KeyBackspace})
	if parent != 1 || root != 0 {
		t.Fatalf("parent=%d root=%d, want 1/0", parent, root)
	}

	atRoot = true
	c.HandleKey(KeyEvent{Key: KeyBackspace})
	if parent != 1 || root != 1 {
		t.Fatalf("parent=%d root=%d, want 1/1", parent, root)
	}
}

func TestEscapeClearsSelectionOutsideSearch(t *testing.T) {
	m, e := buildModel("a", "b")
	c := New(m, e, nil, nil, Callbacks{})

	m.SelectSingle(0)
	c.HandleKey(KeyEvent{Key: KeyEscape})
	if m.Stats().SelectedFiles+m.Stats().SelectedFolders != 0 {
		t.Fatal("Escape did not clear selection")
	}
}

func TestMouseSelectionAlgebra(t *testing.T) {
	m, e := buildModel("a", "b", "c", "d")
	c := New(m, e, nil, nil, Callbacks{})

	center := func(i int) (float64, float64) {
		b := m.Items()[i].Bounds
		return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
	}

	x, y := center(0)
	c.HandleMouse(MouseEvent{X: x, Y: y})
	if !m.Items()[0].Selected || m.AnchorIndex() != 0 {
		t.Fatal("plain click did not select single + set anchor")
	}

	x, y = center(2)
	c.HandleMouse(MouseEvent{X: x, Y: y, Modifiers: ModShift})
	for i, want := range []bool{true, true, true, false} {
		if m.Items()[i].Selected != want {
			t.Fatalf("after shift-click: item %d selected=%v, want %v", i, m.Items()[i].Selected, want)
		}
	}

	x, y = center(1)
	c.HandleMouse(MouseEvent{X: x, Y: y, Modifiers: ModControl})
	if m.Items()[1].Selected {
		t.Fatal("ctrl-click did not toggle off")
	}
}

func TestWheelSnapsToColumnBoundaries(t *testing.T) {
	names := make([]string, 200)
	for i := range names {
		names[i] = "item-with-a-rather-long-name-" + string(rune('a'+i%26))
	}
	m, e := buildModel(names...)
	if e.Columns() < 3 {
		t.Skipf("layout produced %d columns; need >= 3", e.Columns())
	}

	c := New(m, e, nil, nil, Callbacks{})
	c.HandleWheel(WheelEvent{Delta: -2})

	offset := e.HorizontalOffset()
	stride := e.ColumnStride()
	if offset <= 0 {
		t.Fatal("wheel down did not scroll right")
	}
	cols := offset / stride
	if diff := cols - float64(int(cols+0.5)); diff > 0.001 || diff < -0.001 {
		t.Fatalf("offset %v is not column-aligned (stride %v)", offset, stride)
	}
}
