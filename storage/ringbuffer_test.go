package storage

import "testing"

func TestRingBufferWrapsAndOrdersChronologically(t *testing.T) {
	rb := NewRingBuffer[int](3)
	rb.Add(1)
	rb.Add(2)
	rb.Add(3)
	rb.Add(4) // evicts 1

	got := rb.GetAll()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetAll()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if !rb.IsFull() {
		t.Fatal("expected buffer to be full after 4 adds into capacity 3")
	}
}

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer[string](2)
	if _, ok := rb.GetLatest(); ok {
		t.Fatal("expected no latest value on empty buffer")
	}
	rb.Add("a")
	rb.Add("b")
	v, ok := rb.GetLatest()
	if !ok || v != "b" {
		t.Fatalf("GetLatest() = %q, %v; want \"b\", true", v, ok)
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer[int](4)
	rb.Add(1)
	rb.Add(2)
	rb.Clear()
	if !rb.IsEmpty() {
		t.Fatal("expected buffer empty after Clear")
	}
	if rb.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", rb.Size())
	}
}

func TestRingBufferDefaultCapacity(t *testing.T) {
	rb := NewRingBuffer[int](0)
	if rb.Capacity() != 60 {
		t.Fatalf("Capacity() = %d, want default 60", rb.Capacity())
	}
}
