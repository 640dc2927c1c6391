package overlay

import (
	"testing"
	"time"

	"github.com/redsalamander/folderview/models"
)

func TestClassifyTaxonomy(t *testing.T) {
	cases := []struct {
		status    models.Status
		wantKind  Kind
		wantTitle string
	}{
		{models.StatusNetworkUnreachable, KindInformation, "Disconnected"},
		{models.StatusAuthenticationFailed, KindError, "Login failed"},
		{models.StatusCertificateFailed, KindError, "Certificate failed"},
		{models.StatusAccessDenied, KindError, "Access denied"},
		{models.StatusUnknownError, KindError, "Enumeration failed"},
		{models.StatusInvalidData, KindError, "Enumeration failed"},
	}

	for _, tc := range cases {
		o := Classify(tc.status)
		if o.Kind != tc.wantKind || o.Title != tc.wantTitle {
			t.Fatalf("Classify(%d) = kind %v title %q, want kind %v title %q",
				tc.status, o.Kind, o.Title, tc.wantKind, tc.wantTitle)
		}
	}

	if Classify(models.StatusNetworkUnreachable).Closable {
		t.Fatal("Disconnected overlay must not be closable")
	}
}

func TestBusyDebounceSkippedWhenEnumerationCompletesFirst(t *testing.T) {
	c := NewController(50*time.Millisecond, nil, nil, nil)
	defer c.Close()

	c.ArmBusy(func() {})
	c.Disarm()

	time.Sleep(120 * time.Millisecond)
	if c.Current() != nil {
		t.Fatal("busy overlay appeared even though enumeration completed before the debounce")
	}
}

func TestBusyDebounceFires(t *testing.T) {
	c := NewController(20*time.Millisecond, nil, nil, nil)
	defer c.Close()

	c.ArmBusy(func() {})

	deadline := time.Now().Add(time.Second)
	for c.Current() == nil {
		if time.Now().After(deadline) {
			t.Fatal("busy overlay never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}

	o := c.Current()
	if o.Kind != KindBusy || o.Closable || !o.BlocksInput {
		t.Fatalf("busy overlay = %+v, want non-closable input-blocking busy", o)
	}
}

func TestCancelBusyTransitionsToCanceledInformation(t *testing.T) {
	c := NewController(10*time.Millisecond, nil, nil, nil)
	defer c.Close()

	canceled := false
	c.ArmBusy(func() { canceled = true })

	deadline := time.Now().Add(time.Second)
	for c.Current() == nil {
		if time.Now().After(deadline) {
			t.Fatal("busy overlay never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.CancelBusy()
	if !canceled {
		t.Fatal("CancelBusy did not invoke onCancel")
	}

	o := c.Current()
	if o == nil || o.Kind != KindInformation || o.Title != "Enumeration canceled" {
		t.Fatalf("post-cancel overlay = %+v, want closable canceled information", o)
	}
	if !o.Closable || o.BlocksInput {
		t.Fatalf("canceled overlay closable=%v blocksInput=%v, want true/false", o.Closable, o.BlocksInput)
	}

	if !c.Dismiss() {
		t.Fatal("canceled overlay should be dismissable")
	}
	if c.Current() != nil {
		t.Fatal("overlay still visible after Dismiss")
	}
}

func TestDismissRefusesNonClosable(t *testing.T) {
	c := NewController(time.Hour, nil, nil, nil)
	defer c.Close()

	c.ShowStatus(models.StatusNetworkUnreachable)
	if c.Dismiss() {
		t.Fatal("Dismiss succeeded on a non-closable overlay")
	}
	if c.Current() == nil {
		t.Fatal("non-closable overlay disappeared")
	}

	c.ShowStatus(models.StatusOK)
	if c.Current() != nil {
		t.Fatal("StatusOK did not clear the overlay")
	}
}

func TestDispatcherAutoStopsWhenSubscribersDrain(t *testing.T) {
	d := NewDispatcher(time.Millisecond, nil)

	ticks := make(chan struct{}, 16)
	remaining := 3
	id := d.Subscribe(func(now time.Time) bool {
		ticks <- struct{}{}
		remaining--
		return remaining > 0
	})
	if id == 0 {
		t.Fatal("Subscribe returned 0 for a valid callback")
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatal("tick never delivered")
		}
	}

	deadline := time.Now().Add(time.Second)
	for d.ActiveSubscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never drained")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDispatcherUnsubscribeDuringTick(t *testing.T) {
	d := NewDispatcher(time.Millisecond, nil)

	victimID := d.Subscribe(func(now time.Time) bool { return true })
	killed := make(chan struct{})
	d.Subscribe(func(now time.Time) bool {
		d.Unsubscribe(victimID)
		select {
		case killed <- struct{}{}:
		default:
		}
		return false
	})

	select {
	case <-killed:
	case <-time.After(time.Second):
		t.Fatal("killer subscriber never ticked")
	}

	deadline := time.Now().Add(time.Second)
	for d.ActiveSubscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("mid-tick unsubscribe left %d subscribers", d.ActiveSubscribers())
		}
		time.Sleep(time.Millisecond)
	}
}
