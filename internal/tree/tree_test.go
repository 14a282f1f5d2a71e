package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"/", "", false},
		{"services/", "services", false},
		{"/services//api/", "services/api", false},
		{"./services/./api", "services/api", false},
		{`services\api`, "services/api", false},
		{"services/../etc", "", true},
		{"..", "", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Normalize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinAndSplit(t *testing.T) {
	p, err := Join("services/", "api.yaml")
	if err != nil || p != "services/api.yaml" {
		t.Fatalf("Join() = %q, %v", p, err)
	}
	dir, name := Split(p)
	if dir != "services" || name != "api.yaml" {
		t.Errorf("Split(%q) = %q, %q", p, dir, name)
	}
	if dir, name := Split("root.yaml"); dir != "" || name != "root.yaml" {
		t.Errorf("Split(root.yaml) = %q, %q", dir, name)
	}
	if got := Parent("a/b/c"); got != "a/b" {
		t.Errorf("Parent(a/b/c) = %q", got)
	}
	if got := Parent("a"); got != "" {
		t.Errorf("Parent(a) = %q", got)
	}
}

func TestBreadcrumbs(t *testing.T) {
	want := []Crumb{
		{Name: "services", Path: "services"},
		{Name: "api", Path: "services/api"},
	}
	if diff := cmp.Diff(want, Breadcrumbs("/services/api/")); diff != "" {
		t.Errorf("Breadcrumbs() mismatch (-want +got):\n%s", diff)
	}
	if got := Breadcrumbs(""); got != nil {
		t.Errorf("Breadcrumbs(\"\") = %v, want nil", got)
	}
}
