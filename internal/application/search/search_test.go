package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bravo68web/confdash/internal/domain/models"
)

func TestStrings(t *testing.T) {
	items := []string{"Production-EU", "staging", "Dev1"}

	tests := []struct {
		query string
		want  []string
	}{
		{"duct", []string{"Production-EU"}},
		{"DUCT", []string{"Production-EU"}},
		{"", items},
		{"   ", items},
		{"e", []string{"Production-EU", "Dev1"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		got := Strings(items, tt.query)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Strings(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestFilterMultipleFields(t *testing.T) {
	events := []models.Event{
		{CommitID: "a1", Author: "alice", CommitMessage: "bump replicas"},
		{CommitID: "b2", Author: "bob", CommitMessage: "rotate keys"},
	}
	got := Filter(events, "ROTATE",
		func(e models.Event) string { return e.Author },
		func(e models.Event) string { return e.CommitMessage },
	)
	if len(got) != 1 || got[0].CommitID != "b2" {
		t.Errorf("Filter() = %+v, want b2 only", got)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	items := []string{"a", "b"}
	_ = Strings(items, "a")
	if items[0] != "a" || items[1] != "b" || len(items) != 2 {
		t.Errorf("input modified: %v", items)
	}
}
