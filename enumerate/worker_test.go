package enumerate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/iconloader"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// countingExtractor records how many unique extension/path queries the
// enumeration plan actually dispatched.
type countingExtractor struct {
	mu         sync.Mutex
	extQueries map[string]int
	pathCalls  int
	next       int32
}

func newCountingExtractor() *countingExtractor {
	return &countingExtractor{extQueries: make(map[string]int), next: 100}
}

func (e *countingExtractor) QueryIconIndexByExtension(extension string, attrs plugin.FileAttributes) (int32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extQueries[extension]++
	e.next++
	return e.next, true
}

func (e *countingExtractor) QuerySysIconIndexForPath(path string, flags int, overlays bool) (int32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pathCalls++
	e.next++
	return e.next, true
}

func (e *countingExtractor) ExtractSystemIcon(iconIndex int32, sizeDip float64) (plugin.IconHandle, error) {
	return fakeHandle{}, nil
}

type fakeHandle struct{}

func (fakeHandle) Release() {}

func makeEntries(names []string, dirs int) []fsadapter.Entry {
	entries := make([]fsadapter.Entry, 0, len(names))
	for i, name := range names {
		var attrs plugin.FileAttributes
		if i < dirs {
			attrs = plugin.AttrDirectory
		}
		entries = append(entries, fsadapter.Entry{
			Name:          name,
			Attributes:    attrs,
			LastWriteTime: int64(i),
			SizeBytes:     uint64(i) * 10,
		})
	}
	return entries
}

func newTestWorker(t *testing.T, source *fsadapter.MemSource, extractor plugin.IconExtractor) (*Worker, chan *models.Payload) {
	t.Helper()
	payloads := make(chan *models.Payload, 8)
	cache := iconcache.New(extractor, 1<<20, nil)
	w := NewWorker(fsadapter.New(source), cache,
		func(p *models.Payload) { payloads <- p },
		func(IconMessage) {})
	t.Cleanup(w.Stop)
	return w, payloads
}

func waitPayload(t *testing.T, ch chan *models.Payload) *models.Payload {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestEnumerationSortsDirectoriesBeforeFiles(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/x", makeEntries([]string{"zdir", "adir", "b.txt", "A.txt"}, 2))

	w, payloads := newTestWorker(t, source, newCountingExtractor())
	generation := w.RequestEnumeration("/x")

	p := waitPayload(t, payloads)
	if p.Generation != generation {
		t.Fatalf("generation = %d, want %d", p.Generation, generation)
	}
	if p.Status != models.StatusOK {
		t.Fatalf("status = %d, want OK", p.Status)
	}

	wantOrder := []string{"adir", "zdir", "A.txt", "b.txt"}
	if len(p.Items) != len(wantOrder) {
		t.Fatalf("items = %d, want %d", len(p.Items), len(wantOrder))
	}
	for i, want := range wantOrder {
		if p.Items[i].DisplayName != want {
			t.Fatalf("item %d = %q, want %q", i, p.Items[i].DisplayName, want)
		}
		if p.Items[i].UnsortedOrder != i {
			t.Fatalf("item %d unsortedOrder = %d, want %d", i, p.Items[i].UnsortedOrder, i)
		}
	}
}

func TestDuplicateExtensionsResolveOneQueryEach(t *testing.T) {
	names := make([]string, 0, 1000)
	for i := 0; i < 995; i++ {
		names = append(names, "file"+string(rune('a'+i%26))+itoa(i)+".txt")
	}
	for i := 0; i < 5; i++ {
		names = append(names, "blob"+itoa(i)+".bin")
	}

	source := fsadapter.NewMemSource()
	source.SetFolder("/big", makeEntries(names, 0))

	extractor := newCountingExtractor()
	w, payloads := newTestWorker(t, source, extractor)
	w.RequestEnumeration("/big")
	p := waitPayload(t, payloads)

	if len(p.Items) != 1000 {
		t.Fatalf("items = %d, want 1000", len(p.Items))
	}
	for _, it := range p.Items {
		if it.IconIndex < 0 {
			t.Fatalf("item %q left unresolved", it.DisplayName)
		}
	}

	extractor.mu.Lock()
	defer extractor.mu.Unlock()
	if len(extractor.extQueries) != 2 {
		t.Fatalf("dispatched %d unique extension queries, want 2 (.txt, .bin)", len(extractor.extQueries))
	}
	for ext, n := range extractor.extQueries {
		if n != 1 {
			t.Fatalf("extension %q queried %d times, want 1", ext, n)
		}
	}
}

func TestCancelPendingDropsResultSilently(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/slow", makeEntries([]string{"a.txt"}, 0))

	started := make(chan struct{})
	source.BorrowHook = func(ctx context.Context, path string) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
			return nil
		}
	}

	w, payloads := newTestWorker(t, source, newCountingExtractor())
	before := w.RequestEnumeration("/slow")
	<-started
	after := w.CancelPending()

	if after <= before {
		t.Fatalf("generation did not advance on cancel: before=%d after=%d", before, after)
	}

	select {
	case p := <-payloads:
		t.Fatalf("canceled enumeration still posted payload: %+v", p)
	case <-time.After(200 * time.Millisecond):
	}

	// A subsequent request for the same folder succeeds normally.
	source.BorrowHook = nil
	w.RequestEnumeration("/slow")
	p := waitPayload(t, payloads)
	if p.Status != models.StatusOK || len(p.Items) != 1 {
		t.Fatalf("post-cancel enumeration failed: status=%d items=%d", p.Status, len(p.Items))
	}
}

func TestLatestRequestWins(t *testing.T) {
	source := fsadapter.NewMemSource()
	source.SetFolder("/a", makeEntries([]string{"a.txt"}, 0))
	source.SetFolder("/b", makeEntries([]string{"b.txt"}, 0))

	var borrows atomic.Int32
	gate := make(chan struct{})
	source.BorrowHook = func(ctx context.Context, path string) error {
		if borrows.Add(1) == 1 {
			<-gate
		}
		return nil
	}

	w, payloads := newTestWorker(t, source, newCountingExtractor())
	w.RequestEnumeration("/a")
	want := w.RequestEnumeration("/b")
	close(gate)

	p := waitPayload(t, payloads)
	if p.Generation != want || p.Folder != "/b" {
		t.Fatalf("got payload for %q gen %d, want /b gen %d", p.Folder, p.Generation, want)
	}

	select {
	case stale := <-payloads:
		t.Fatalf("stale payload posted: %+v", stale)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBorrowFailureSurfacesAsStatusPayload(t *testing.T) {
	source := fsadapter.NewMemSource()
	w, payloads := newTestWorker(t, source, newCountingExtractor())

	w.RequestEnumeration("/missing")
	p := waitPayload(t, payloads)
	if p.Status == models.StatusOK {
		t.Fatal("expected failure status for missing folder")
	}
	if len(p.Items) != 0 {
		t.Fatalf("failed payload carries %d items", len(p.Items))
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want models.Status
	}{
		{fsadapter.ErrInvalidData, models.StatusInvalidData},
		{errors.New("boom"), models.StatusUnknownError},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Fatalf("classifyError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestQueueIconLoadingSupersedesOlderBatch(t *testing.T) {
	source := fsadapter.NewMemSource()
	cache := iconcache.New(newCountingExtractor(), 1<<20, nil)

	var mu sync.Mutex
	var posted []IconMessage
	w := NewWorker(fsadapter.New(source), cache,
		func(*models.Payload) {},
		func(m IconMessage) {
			mu.Lock()
			posted = append(posted, m)
			mu.Unlock()
		})
	defer w.Stop()

	first := w.QueueIconLoading([]iconloader.Request{{IconIndex: 1, ItemIndices: []int{0}}}, 1, 16)
	second := w.QueueIconLoading([]iconloader.Request{{IconIndex: 2, ItemIndices: []int{1}}}, 1, 16)
	if second <= first {
		t.Fatalf("batch id did not advance: %d then %d", first, second)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		var sawSecond bool
		for _, m := range posted {
			if m.BatchID == second {
				sawSecond = true
			}
		}
		mu.Unlock()
		if sawSecond {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second batch never serviced")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, m := range posted {
		if m.BatchID == second && m.IconIndex != 2 {
			t.Fatalf("batch %d serviced iconIndex %d", m.BatchID, m.IconIndex)
		}
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
