package notify

import (
	"testing"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
)

func TestRecorderDrain(t *testing.T) {
	r := NewRecorder()
	r.Notify(New(models.SeveritySuccess, "saved"))
	r.Notify(New(models.SeverityError, "boom"))

	if got := len(r.All()); got != 2 {
		t.Fatalf("len(All()) = %d, want 2", got)
	}
	drained := r.Drain()
	if len(drained) != 2 || drained[1].Message != "boom" {
		t.Errorf("Drain() = %+v", drained)
	}
	if got := len(r.All()); got != 0 {
		t.Errorf("len(All()) after Drain = %d, want 0", got)
	}
}

func TestDedupSuppressesWithinWindow(t *testing.T) {
	rec := NewRecorder()
	d := NewDedup(rec, time.Second)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }

	d.Notify(New(models.SeverityError, "Cannot connect"))
	d.Notify(New(models.SeverityError, "Cannot connect"))
	d.Notify(New(models.SeveritySuccess, "Cannot connect"))

	if got := len(rec.All()); got != 2 {
		t.Fatalf("forwarded = %d, want 2 (duplicate dropped, other severity kept)", got)
	}

	now = now.Add(time.Second)
	d.Notify(New(models.SeverityError, "Cannot connect"))
	if got := len(rec.All()); got != 3 {
		t.Errorf("forwarded after window = %d, want 3", got)
	}
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, nil, b}.Notify(New(models.SeverityInfo, "hi"))
	if len(a.All()) != 1 || len(b.All()) != 1 {
		t.Errorf("Multi did not fan out: %d %d", len(a.All()), len(b.All()))
	}
}
