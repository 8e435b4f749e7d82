package ssobrowser

import (
	"testing"
	"time"
)

func TestWatchReadyClosesOnSet(t *testing.T) {
	w := NewWatch[Payload]()
	select {
	case <-w.Ready():
		t.Fatal("Ready should not be closed before Set")
	default:
	}

	w.Set(Payload{Token: "tok"})

	select {
	case <-w.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready did not close after Set")
	}
	if got := w.Value(); got.Token != "tok" {
		t.Fatalf("Value() = %+v, want token=tok", got)
	}
}

func TestWatchSetIsSingleShot(t *testing.T) {
	w := NewWatch[Payload]()
	w.Set(Payload{Token: "first"})
	w.Set(Payload{Token: "second"})
	if got := w.Value(); got.Token != "first" {
		t.Fatalf("Value() = %+v, want first value to stick", got)
	}
}
