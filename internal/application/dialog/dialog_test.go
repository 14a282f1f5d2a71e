package dialog

import (
	"context"
	"errors"
	"testing"
)

type namespaceForm struct {
	Name string
}

func TestHandleSubmitSuccessClosesAndResets(t *testing.T) {
	d := New(namespaceForm{})
	d.OpenWith(namespaceForm{Name: "qa-env"})

	var got string
	ok := d.HandleSubmit(context.Background(), func(_ context.Context, f namespaceForm) error {
		if d.State() != Submitting {
			t.Errorf("state during submit = %v, want submitting", d.State())
		}
		got = f.Name
		return nil
	})

	if !ok {
		t.Fatal("HandleSubmit() = false, want true")
	}
	if got != "qa-env" {
		t.Errorf("submitted name = %q, want qa-env", got)
	}
	if d.State() != Closed {
		t.Errorf("state = %v, want closed", d.State())
	}
	if d.Data().Name != "" {
		t.Errorf("form not reset: %+v", d.Data())
	}
}

func TestHandleSubmitFailureKeepsForm(t *testing.T) {
	d := New(namespaceForm{})
	d.OpenWith(namespaceForm{Name: "qa-env"})

	boom := errors.New("namespace exists")
	ok := d.HandleSubmit(context.Background(), func(context.Context, namespaceForm) error {
		return boom
	})

	if ok {
		t.Fatal("HandleSubmit() = true, want false")
	}
	if d.State() != Open {
		t.Errorf("state = %v, want open", d.State())
	}
	if d.Data().Name != "qa-env" {
		t.Errorf("form data = %+v, want qa-env kept", d.Data())
	}
	if !errors.Is(d.Err(), boom) {
		t.Errorf("Err() = %v, want %v", d.Err(), boom)
	}
}

func TestHandleSubmitWhenClosedIsNoop(t *testing.T) {
	d := New(namespaceForm{})
	called := false
	ok := d.HandleSubmit(context.Background(), func(context.Context, namespaceForm) error {
		called = true
		return nil
	})
	if ok || called {
		t.Errorf("closed dialog submitted: ok=%v called=%v", ok, called)
	}
}

func TestCloseResets(t *testing.T) {
	d := New(namespaceForm{Name: "default"})
	d.Open()
	d.Set(namespaceForm{Name: "typed"})
	if d.Data().Name != "typed" {
		t.Fatalf("Set() not applied: %+v", d.Data())
	}
	d.Close()
	if d.IsOpen() {
		t.Error("dialog still open after Close")
	}
	if d.Data().Name != "default" {
		t.Errorf("form after Close = %+v, want default", d.Data())
	}
}
