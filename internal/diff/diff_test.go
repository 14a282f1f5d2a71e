package diff

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `diff --git a/app.yaml b/app.yaml
index 3b18e51..a2c4f0d 100644
--- a/app.yaml
+++ b/app.yaml
@@ -5,3 +5,4 @@ server:
 port: 8080
-host: localhost
+host: 0.0.0.0
+debug: true
 timeout: 30
\ No newline at end of file
`

func TestParseLineNumbers(t *testing.T) {
	rows := Parse(sample)

	want := []Row{
		{Type: Context, Content: "port: 8080", OldLine: 5, NewLine: 5},
		{Type: Removed, Content: "host: localhost", OldLine: 6},
		{Type: Added, Content: "host: 0.0.0.0", NewLine: 6},
		{Type: Added, Content: "debug: true", NewLine: 7},
		{Type: Context, Content: "timeout: 30", OldLine: 7, NewLine: 8},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFirstRowsAfterHeader(t *testing.T) {
	rows := Parse("@@ -5,3 +5,4 @@\n-a\n+b\n c\n+d\n")

	var firstOld, firstNew int
	for _, r := range rows {
		if firstOld == 0 && r.Type != Added {
			firstOld = r.OldLine
		}
		if firstNew == 0 && r.Type != Removed {
			firstNew = r.NewLine
		}
	}
	if firstOld != 5 {
		t.Errorf("first old line = %d, want 5", firstOld)
	}
	if firstNew != 5 {
		t.Errorf("first new line = %d, want 5", firstNew)
	}
}

func TestParsePreservesChangeCount(t *testing.T) {
	text := "--- a/x\n+++ b/x\n@@ -1,4 +1,4 @@\n a\n-b\n+B\n c\n\n\\ No newline at end of file\n"
	rows := Parse(text)

	var plus, minus, ctx int
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(l, "+++") || strings.HasPrefix(l, "---") {
			continue
		}
		switch {
		case strings.HasPrefix(l, "+"):
			plus++
		case strings.HasPrefix(l, "-"):
			minus++
		case strings.HasPrefix(l, " "):
			ctx++
		}
	}
	// the blank line inside the hunk is context too
	ctx++

	added, removed := Stats(rows)
	if added != plus || removed != minus {
		t.Errorf("Stats() = +%d -%d, want +%d -%d", added, removed, plus, minus)
	}
	if got := len(rows) - added - removed; got != ctx {
		t.Errorf("context rows = %d, want %d", got, ctx)
	}
	for _, r := range rows {
		if strings.HasPrefix(r.Content, "@@") || strings.Contains(r.Content, "No newline") {
			t.Errorf("header or marker leaked into rows: %+v", r)
		}
	}
}

func TestParseMultipleHunks(t *testing.T) {
	text := "@@ -1 +1 @@\n-a\n+b\n@@ -10,2 +10,2 @@\n x\n-y\n+z\n"
	rows := Parse(text)
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	if rows[2].OldLine != 10 || rows[2].NewLine != 10 {
		t.Errorf("second hunk first row = %+v, want lines 10/10", rows[2])
	}
}

func TestParseSkipsUnrecognisedLinesInsideHunk(t *testing.T) {
	rows := Parse("@@ -1,3 +1,3 @@\n a\nGARBAGE\n-b\n+B\n c\n")

	want := []Row{
		{Type: Context, Content: "a", OldLine: 1, NewLine: 1},
		{Type: Removed, Content: "b", OldLine: 2},
		{Type: Added, Content: "B", NewLine: 2},
		{Type: Context, Content: "c", OldLine: 3, NewLine: 3},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStopsAtNextFileHeader(t *testing.T) {
	text := "--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b\n--- a/y\n+++ b/y\n@@ -1 +1 @@\n-c\n+d\n"
	rows := Parse(text)

	var got []string
	for _, r := range rows {
		got = append(got, r.Prefix()+r.Content)
	}
	if diff := cmp.Diff([]string{"-a", "+b", "-c", "+d"}, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmpty(t *testing.T) {
	if rows := Parse(""); len(rows) != 0 {
		t.Errorf("Parse(\"\") = %v, want none", rows)
	}
	if rows := Parse("no hunks here\n+ still not a hunk\n"); len(rows) != 0 {
		t.Errorf("rows outside hunks = %v, want none", rows)
	}
}

func TestUnifiedRoundTripsThroughParse(t *testing.T) {
	before := "a: 1\nb: 2\nc: 3\nd: 4\ne: 5\n"
	after := "a: 1\nb: 20\nc: 3\nd: 4\ne: 5\nf: 6\n"

	text := Unified("app.yaml", before, after, DefaultContext)
	if !strings.HasPrefix(text, "--- a/app.yaml\n+++ b/app.yaml\n@@ -1,5 +1,6 @@\n") {
		t.Fatalf("Unified() header:\n%s", text)
	}

	added, removed := Stats(Parse(text))
	if added != 2 || removed != 1 {
		t.Errorf("Stats() = +%d -%d, want +2 -1", added, removed)
	}
}

func TestUnifiedNoChanges(t *testing.T) {
	if got := Unified("x", "same\n", "same\n", DefaultContext); got != "" {
		t.Errorf("Unified() = %q, want empty", got)
	}
}
