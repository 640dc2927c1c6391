// Package iconloader builds the per-iconIndex icon load queue: items
// sharing an icon are grouped so each OS icon is extracted once, and
// groups with on-screen items are serviced first. It deliberately never
// references models.Item: requests and views are index-based so the
// background worker cannot touch the item model directly.
package iconloader

import (
	"sort"

	"github.com/redsalamander/folderview/iconcache"
)

// ItemIconView is the minimal per-item information the builder needs: an
// item's position in the UI-owned list, its resolved icon index, whether
// it already has a bitmap, and its current visibility.
type ItemIconView struct {
	Index     int
	IconIndex int32
	HasBitmap bool
	Visible   bool
}

// Request groups every item sharing one iconIndex into a single background
// extraction job.
type Request struct {
	IconIndex             int32
	HasVisibleItems       bool
	FirstVisibleItemIndex int
	ItemIndices           []int
}

// BuildResult is the outcome of grouping a pass over the item list: a
// priority-ordered queue plus the items whose bitmaps could be stamped
// immediately from cache (no background work needed).
type BuildResult struct {
	Queue          []Request
	StampedIndices map[int32][]int // iconIndex -> item indices already satisfied from cache
	TotalNeeded    int
	VisibleNeeded  int
}

const noFirstVisible = -1

// Build groups items needing an icon by IconIndex, splits groups into
// visible/offscreen, and orders visible groups by first-visible-index then
// descending group size so placeholders resolve in view order.
func Build(items []ItemIconView, cache *iconcache.Cache, device iconcache.DeviceID) BuildResult {
	type groupBuild struct {
		hasVisible       bool
		firstVisibleIdx  int
		itemIndices      []int
	}

	groups := make(map[int32]*groupBuild)
	var totalNeeded, visibleNeeded int

	for _, it := range items {
		if it.IconIndex < 0 || it.HasBitmap {
			continue
		}
		totalNeeded++
		if it.Visible {
			visibleNeeded++
		}

		g, ok := groups[it.IconIndex]
		if !ok {
			g = &groupBuild{firstVisibleIdx: noFirstVisible}
			groups[it.IconIndex] = g
		}
		if it.Visible {
			g.hasVisible = true
			if g.firstVisibleIdx == noFirstVisible || it.Index < g.firstVisibleIdx {
				g.firstVisibleIdx = it.Index
			}
		}
		g.itemIndices = append(g.itemIndices, it.Index)
	}

	result := BuildResult{
		StampedIndices: make(map[int32][]int),
		TotalNeeded:    totalNeeded,
		VisibleNeeded:  visibleNeeded,
	}

	var visible, offscreen []Request
	for iconIndex, g := range groups {
		if len(g.itemIndices) == 0 {
			continue
		}
		if bmp, ok := cache.GetCachedBitmap(iconIndex, device); ok {
			_ = bmp
			result.StampedIndices[iconIndex] = g.itemIndices
			continue
		}

		req := Request{
			IconIndex:             iconIndex,
			HasVisibleItems:       g.hasVisible,
			FirstVisibleItemIndex: g.firstVisibleIdx,
			ItemIndices:           g.itemIndices,
		}
		if g.hasVisible {
			visible = append(visible, req)
		} else {
			offscreen = append(offscreen, req)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].FirstVisibleItemIndex != visible[j].FirstVisibleItemIndex {
			return visible[i].FirstVisibleItemIndex < visible[j].FirstVisibleItemIndex
		}
		return len(visible[i].ItemIndices) > len(visible[j].ItemIndices)
	})

	result.Queue = append(visible, offscreen...)
	return result
}

// Boost reorders an in-flight queue so groups needed by the current
// viewport (plus a buffer) are serviced first.
func Boost(queue []Request, visibleIconIndices []int32) (boosted []Request, didBoost bool) {
	if len(queue) == 0 || len(visibleIconIndices) == 0 {
		return queue, false
	}

	needed := make(map[int32]bool, len(visibleIconIndices))
	for _, idx := range visibleIconIndices {
		needed[idx] = true
	}

	var high, low []Request
	for _, req := range queue {
		if needed[req.IconIndex] {
			req.HasVisibleItems = true
			high = append(high, req)
			didBoost = true
		} else {
			low = append(low, req)
		}
	}

	return append(high, low...), didBoost
}

// VisibleRangeIconIndices collects the distinct icon indices needed by
// items in [rangeStart, rangeEnd) that don't already have a bitmap, for use
// with Boost. bufferItems extends the range on both sides to reduce
// pop-in while scrolling.
func VisibleRangeIconIndices(items []ItemIconView, visStart, visEnd, bufferItems int) []int32 {
	rangeStart := visStart - bufferItems
	if rangeStart < 0 {
		rangeStart = 0
	}
	rangeEnd := visEnd + bufferItems
	if rangeEnd > len(items) {
		rangeEnd = len(items)
	}

	seen := make(map[int32]bool)
	var out []int32
	for i := rangeStart; i < rangeEnd && i < len(items); i++ {
		it := items[i]
		if it.HasBitmap || it.IconIndex < 0 || seen[it.IconIndex] {
			continue
		}
		seen[it.IconIndex] = true
		out = append(out, it.IconIndex)
	}
	return out
}
