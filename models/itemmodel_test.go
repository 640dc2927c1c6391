package models

import "testing"

func TestApplySortDirectoriesFirst(t *testing.T) {
	m := NewItemModel()
	items := []*Item{
		{DisplayName: "b.txt"},
		{DisplayName: "Zeta", IsDirectory: true},
		{DisplayName: "a.txt"},
		{DisplayName: "Alpha", IsDirectory: true},
	}
	m.AdoptPayload("/x", items, -1)

	got := m.Items()
	if !got[0].IsDirectory || !got[1].IsDirectory {
		t.Fatalf("expected directories first, got %+v", got)
	}
	if got[0].DisplayName != "Alpha" || got[1].DisplayName != "Zeta" {
		t.Fatalf("unexpected directory order: %s, %s", got[0].DisplayName, got[1].DisplayName)
	}
	if got[2].DisplayName != "a.txt" || got[3].DisplayName != "b.txt" {
		t.Fatalf("unexpected file order: %s, %s", got[2].DisplayName, got[3].DisplayName)
	}
}

func TestApplySortAscendingThenDescendingIsReverse(t *testing.T) {
	m := NewItemModel()
	items := []*Item{
		{DisplayName: "c.txt"},
		{DisplayName: "a.txt"},
		{DisplayName: "b.txt"},
	}
	m.AdoptPayload("/x", items, -1)
	m.ApplySort(SortByName, Ascending)
	asc := make([]string, len(m.Items()))
	for i, it := range m.Items() {
		asc[i] = it.DisplayName
	}

	m.ApplySort(SortByName, Descending)
	desc := m.Items()
	for i, it := range desc {
		want := asc[len(asc)-1-i]
		if it.DisplayName != want {
			t.Fatalf("descending[%d] = %s, want %s (reverse of ascending)", i, it.DisplayName, want)
		}
	}
}

func TestAdoptPayloadPreservesSelectionAndFocus(t *testing.T) {
	m := NewItemModel()
	items := []*Item{
		{DisplayName: "a.txt", SizeBytes: 10},
		{DisplayName: "b.txt", SizeBytes: 20},
	}
	m.AdoptPayload("/x", items, -1)
	m.SelectSingle(1) // "b.txt"

	reloaded := []*Item{
		{DisplayName: "a.txt", SizeBytes: 10},
		{DisplayName: "b.txt", SizeBytes: 20},
	}
	m.AdoptPayload("/x", reloaded, -1)

	if m.FocusedIndex() != 1 {
		t.Fatalf("expected focus on b.txt (index 1), got %d", m.FocusedIndex())
	}
	if !m.Items()[1].Selected {
		t.Fatal("expected b.txt selection to survive incremental refresh")
	}
}

func TestSelectionAlgebra(t *testing.T) {
	m := NewItemModel()
	items := make([]*Item, 5)
	for i := range items {
		items[i] = &Item{DisplayName: string(rune('a' + i))}
	}
	m.AdoptPayload("/x", items, -1)

	m.SelectSingle(1)
	m.RangeSelect(3)
	stats := m.Stats()
	if stats.SelectedFiles != 3 {
		t.Fatalf("range select 1..3 expected 3 selected files, got %d", stats.SelectedFiles)
	}

	m.ClearSelection()
	m.ToggleSelection(0)
	m.ToggleSelection(4)
	stats = m.Stats()
	if stats.SelectedFiles != 2 {
		t.Fatalf("expected 2 selected files after toggles, got %d", stats.SelectedFiles)
	}

	m.SelectAll()
	if m.Stats().SelectedFiles != 5 {
		t.Fatal("expected all 5 files selected")
	}
}

func TestSelectByPredicateReplace(t *testing.T) {
	m := NewItemModel()
	items := []*Item{
		{DisplayName: "keep.txt", Selected: true},
		{DisplayName: "drop.txt"},
		{DisplayName: "keep2.txt"},
	}
	m.AdoptPayload("/x", items, -1)
	m.SelectByPredicate(func(name string) bool { return name == "keep2.txt" }, true)

	// Sorted order is drop.txt, keep.txt, keep2.txt; keep.txt held the
	// prior selection.
	if m.Items()[1].Selected {
		t.Fatal("replace=true must clear prior selections not matching predicate")
	}
	if !m.Items()[2].Selected {
		t.Fatal("expected keep2.txt to be selected")
	}
}

func TestUnsortedOrderIsUniqueAfterAdopt(t *testing.T) {
	m := NewItemModel()
	items := []*Item{{DisplayName: "c"}, {DisplayName: "a"}, {DisplayName: "b"}}
	m.AdoptPayload("/x", items, -1)

	seen := make(map[int]bool)
	for _, it := range items {
		if seen[it.UnsortedOrder] {
			t.Fatalf("duplicate unsortedOrder %d", it.UnsortedOrder)
		}
		seen[it.UnsortedOrder] = true
	}
	if len(seen) != len(items) {
		t.Fatalf("expected %d unique unsortedOrder values, got %d", len(items), len(seen))
	}
}

func TestEmptyFolderBoundary(t *testing.T) {
	m := NewItemModel()
	m.AdoptPayload("/empty", nil, -1)

	if m.Len() != 0 {
		t.Fatalf("expected empty model, got %d items", m.Len())
	}
	if m.FocusedIndex() != -1 {
		t.Fatalf("expected no focus on empty folder, got %d", m.FocusedIndex())
	}
}

func TestStableHash32Deterministic(t *testing.T) {
	a := StableHash32("/home/user", "file.txt")
	b := StableHash32("/home/user", "file.txt")
	if a != b {
		t.Fatal("StableHash32 must be deterministic for identical inputs")
	}
	c := StableHash32("/home/user", "other.txt")
	if a == c {
		t.Fatal("StableHash32 should (overwhelmingly likely) differ for distinct names")
	}
}
