package fsadapter

import (
	"testing"

	"github.com/redsalamander/folderview/plugin"
)

func TestArenaRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "alpha.txt", Attributes: plugin.AttrArchive, LastWriteTime: 100, SizeBytes: 10},
		{Name: "документ.txt", Attributes: plugin.AttrArchive, LastWriteTime: 200, SizeBytes: 20},
		{Name: "beta", Attributes: plugin.AttrDirectory, LastWriteTime: 300, SizeBytes: 0},
	}

	data, bufferSize, allocatedSize := buildArena(entries)
	it, err := NewIterator(data, bufferSize, allocatedSize)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}

	var got []Entry
	for {
		e, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, e)
	}

	if len(got) != len(entries) {
		t.Fatalf("decoded %d entries, want %d", len(got), len(entries))
	}
	for i, want := range entries {
		if got[i] != want {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestIteratorRejectsAllocatedSizeSmallerThanBufferSize(t *testing.T) {
	if _, err := NewIterator(make([]byte, 10), 10, 5); err != ErrInvalidData {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestIteratorRejectsBufferShorterThanBufferSize(t *testing.T) {
	if _, err := NewIterator(make([]byte, 4), 10, 10); err != ErrInvalidData {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestIteratorRejectsOutOfBoundsNextOffset(t *testing.T) {
	data, bufferSize, allocatedSize := buildArena([]Entry{
		{Name: "a", SizeBytes: 1},
		{Name: "b", SizeBytes: 2},
	})
	// Corrupt the first record's nextEntryOffset to point past the buffer.
	data[0] = 0xFF
	data[1] = 0xFF
	data[2] = 0xFF
	data[3] = 0xFF

	it, err := NewIterator(data, bufferSize, allocatedSize)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}
	if _, _, err := it.Next(); err != nil {
		t.Fatalf("first Next should still succeed, got %v", err)
	}
	if _, _, err := it.Next(); err != ErrInvalidData {
		t.Fatalf("expected ErrInvalidData from corrupted offset, got %v", err)
	}
}

func TestIteratorRejectsNextOffsetInTrailingHeaderWindow(t *testing.T) {
	// A corrupted nextEntryOffset landing in [limit, limit+headerSize)
	// must fail loudly, not read as a clean end of listing on the
	// following call.
	data, bufferSize, allocatedSize := buildArena([]Entry{
		{Name: "a", SizeBytes: 1},
		{Name: "b", SizeBytes: 2},
	})
	// Point the first record's nextEntryOffset exactly at the buffer
	// end: the old-style end check (next < limit+headerSize) passes it.
	data[0] = byte(bufferSize)
	data[1] = byte(bufferSize >> 8)
	data[2] = 0
	data[3] = 0

	it, err := NewIterator(data, bufferSize, allocatedSize)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}
	if _, ok, err := it.Next(); err != ErrInvalidData {
		t.Fatalf("Next = ok=%v err=%v, want ErrInvalidData", ok, err)
	}
}

func TestEmptyListing(t *testing.T) {
	data, bufferSize, allocatedSize := buildArena(nil)
	it, err := NewIterator(data, bufferSize, allocatedSize)
	if err != nil {
		t.Fatalf("NewIterator: %v", err)
	}
	if _, ok, err := it.Next(); ok || err != nil {
		t.Fatalf("expected immediate exhaustion on empty listing, ok=%v err=%v", ok, err)
	}
}
