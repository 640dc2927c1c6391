package models

import (
	"sort"
	"strings"
)

const none = -1

// SelectionStats summarizes the current selection.
type SelectionStats struct {
	SelectedFolders   int
	SelectedFiles     int
	SelectedFileBytes uint64
	SingleItemDetails *Item
}

// ChangeListener is notified after any mutation that changes selection,
// focus, or the item list.
type ChangeListener func(stats SelectionStats)

// ItemModel is the UI-thread-owned, sorted list of items with derived
// selection/focus/grouping state. All methods must be called
// from the UI thread.
type ItemModel struct {
	items         []*Item
	sortField     SortField
	sortDirection SortDirection

	focusedIndex int
	anchorIndex  int

	listeners []ChangeListener

	lastFolder string
}

// NewItemModel creates an empty item model sorted by name ascending.
func NewItemModel() *ItemModel {
	return &ItemModel{
		sortField:     SortByName,
		sortDirection: Ascending,
		focusedIndex:  none,
		anchorIndex:   none,
	}
}

// Items returns the live, UI-thread-owned item slice. Callers must not
// retain it across a mutation.
func (m *ItemModel) Items() []*Item { return m.items }

func (m *ItemModel) Len() int { return len(m.items) }

func (m *ItemModel) OnChange(fn ChangeListener) { m.listeners = append(m.listeners, fn) }

func (m *ItemModel) notify() {
	stats := m.Stats()
	for _, l := range m.listeners {
		l(stats)
	}
}

// FocusedIndex returns the focused index, or -1 if none.
func (m *ItemModel) FocusedIndex() int { return m.focusedIndex }

// AnchorIndex returns the range-selection anchor, or -1 if none.
func (m *ItemModel) AnchorIndex() int { return m.anchorIndex }

// AdoptPayload performs an incremental refresh: items whose identity tuple
// is unchanged carry forward their derived UI state (icon, layouts,
// selection) from the previous list.
func (m *ItemModel) AdoptPayload(folder string, newItems []*Item, fallbackFocus int) {
	sameFolder := folder == m.lastFolder
	previousFocusName := ""
	if sameFolder && m.focusedIndex >= 0 && m.focusedIndex < len(m.items) {
		previousFocusName = m.items[m.focusedIndex].DisplayName
	}

	if sameFolder {
		old := make(map[snapshotKey]*Item, len(m.items))
		for _, it := range m.items {
			old[keyOf(it)] = it
		}
		for _, it := range newItems {
			if prev, ok := old[keyOf(it)]; ok {
				it.Icon = prev.Icon
				it.LabelLayout = prev.LabelLayout
				it.DetailsLayout = prev.DetailsLayout
				it.MetadataLayout = prev.MetadataLayout
				it.DetailsText = prev.DetailsText
				it.Selected = prev.Selected
			}
		}
	}

	for i, it := range newItems {
		it.UnsortedOrder = i
	}

	m.items = newItems
	m.lastFolder = folder
	m.applySortLocked()
	m.resolveFocus(previousFocusName, fallbackFocus)
	m.notify()
}

// applySortLocked sorts m.items in place under the model's current
// sortField/sortDirection: directories first, then files, each group
// ordered by the active comparator with a stable case-sensitive-name then
// unsortedOrder tiebreak.
func (m *ItemModel) applySortLocked() {
	less := m.comparator()
	full := func(a, b *Item) bool {
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		return less(a, b)
	}

	if len(m.items) > 1000 {
		parallelStableSortItems(m.items, full)
		return
	}

	sort.SliceStable(m.items, func(i, j int) bool {
		return full(m.items[i], m.items[j])
	})
}

// ApplySort changes the active sort and re-sorts the list.
func (m *ItemModel) ApplySort(field SortField, direction SortDirection) {
	m.sortField = field
	m.sortDirection = direction
	m.applySortLocked()
	m.notify()
}

func (m *ItemModel) comparator() func(a, b *Item) bool {
	dir := m.sortDirection
	base := func(a, b *Item) int {
		switch m.sortField {
		case SortByExtension:
			return strings.Compare(strings.ToLower(a.Extension()), strings.ToLower(b.Extension()))
		case SortByTime:
			switch {
			case a.LastWriteTime < b.LastWriteTime:
				return -1
			case a.LastWriteTime > b.LastWriteTime:
				return 1
			}
			return 0
		case SortBySize:
			switch {
			case a.SizeBytes < b.SizeBytes:
				return -1
			case a.SizeBytes > b.SizeBytes:
				return 1
			}
			return 0
		case SortByAttributes:
			switch {
			case a.FileAttributes < b.FileAttributes:
				return -1
			case a.FileAttributes > b.FileAttributes:
				return 1
			}
			return 0
		case SortByNone:
			return 0
		default: // SortByName
			return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
		}
	}

	return func(a, b *Item) bool {
		c := base(a, b)
		if c == 0 {
			c = strings.Compare(a.DisplayName, b.DisplayName)
		}
		if c == 0 {
			return a.UnsortedOrder < b.UnsortedOrder
		}
		if dir == Descending {
			return c > 0
		}
		return c < 0
	}
}

// resolveFocus implements the focus/anchor invariant: after
// AdoptPayload replaces the list, focus resolves to the previously-focused name if still
// present, else the first selected item, else the caller-provided
// fallback index, else 0.
func (m *ItemModel) resolveFocus(previousFocusName string, fallback int) {
	if len(m.items) == 0 {
		m.focusedIndex = none
		m.anchorIndex = none
		return
	}

	if previousFocusName != "" {
		for i, it := range m.items {
			if it.DisplayName == previousFocusName {
				m.setFocus(i)
				return
			}
		}
	}

	for i, it := range m.items {
		if it.Selected {
			m.setFocus(i)
			return
		}
	}

	if fallback >= 0 && fallback < len(m.items) {
		m.setFocus(fallback)
		return
	}

	m.setFocus(0)
}

func (m *ItemModel) setFocus(i int) {
	for idx, it := range m.items {
		it.Focused = idx == i
	}
	m.focusedIndex = i
	if m.anchorIndex == none {
		m.anchorIndex = i
	}
}

// clampIndex clamps i into [0, len) or returns none if the list is empty.
func (m *ItemModel) clampIndex(i int) int {
	if len(m.items) == 0 {
		return none
	}
	if i < 0 {
		return 0
	}
	if i >= len(m.items) {
		return len(m.items) - 1
	}
	return i
}

// FocusIndex moves focus (and the range anchor) to i without touching
// the selection, used by arrow-key navigation and incremental search.
func (m *ItemModel) FocusIndex(i int) {
	i = m.clampIndex(i)
	if i == none {
		return
	}
	m.setFocus(i)
	m.anchorIndex = i
	m.notify()
}

// SelectSingle clears all other selections and selects, focuses, and
// anchors index i.
func (m *ItemModel) SelectSingle(i int) {
	i = m.clampIndex(i)
	if i == none {
		return
	}
	for _, it := range m.items {
		it.Selected = false
	}
	m.items[i].Selected = true
	m.setFocus(i)
	m.anchorIndex = i
	m.notify()
}

// ToggleSelection flips item i's selected flag and moves focus to it.
func (m *ItemModel) ToggleSelection(i int) {
	i = m.clampIndex(i)
	if i == none {
		return
	}
	m.items[i].Selected = !m.items[i].Selected
	m.setFocus(i)
	m.notify()
}

// RangeSelect selects [min(i, anchor), max(i, anchor)] and focuses i.
func (m *ItemModel) RangeSelect(i int) {
	i = m.clampIndex(i)
	if i == none {
		return
	}
	anchor := m.anchorIndex
	if anchor == none {
		anchor = i
	}
	lo, hi := anchor, i
	if lo > hi {
		lo, hi = hi, lo
	}
	for idx, it := range m.items {
		it.Selected = idx >= lo && idx <= hi
	}
	m.setFocus(i)
	m.anchorIndex = anchor
	m.notify()
}

// ClearSelection deselects every item.
func (m *ItemModel) ClearSelection() {
	for _, it := range m.items {
		it.Selected = false
	}
	m.notify()
}

// SelectAll selects every item.
func (m *ItemModel) SelectAll() {
	for _, it := range m.items {
		it.Selected = true
	}
	m.notify()
}

// SelectByPredicate applies fn to each item's DisplayName, selecting
// matches. When replace is true, non-matches are first cleared.
func (m *ItemModel) SelectByPredicate(fn func(name string) bool, replace bool) {
	for _, it := range m.items {
		match := fn(it.DisplayName)
		if replace {
			it.Selected = match
		} else if match {
			it.Selected = true
		}
	}
	m.notify()
}

// Stats recomputes the current selection summary.
func (m *ItemModel) Stats() SelectionStats {
	var stats SelectionStats
	var selected []*Item
	for _, it := range m.items {
		if !it.Selected {
			continue
		}
		selected = append(selected, it)
		if it.IsDirectory {
			stats.SelectedFolders++
		} else {
			stats.SelectedFiles++
			stats.SelectedFileBytes += it.SizeBytes
		}
	}
	if len(selected) == 1 {
		stats.SingleItemDetails = selected[0]
	}
	return stats
}
