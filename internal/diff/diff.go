// Package diff turns unified diff text from the config server into rows a
// viewer can render side by side with line numbers.
package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// RowType classifies a diff row
type RowType string

const (
	Added   RowType = "added"
	Removed RowType = "removed"
	Context RowType = "context"
)

// Row is one rendered line. OldLine and NewLine hold the line number on
// each side; 0 means the line does not exist on that side.
type Row struct {
	Type    RowType `json:"type"`
	Content string  `json:"content"`
	OldLine int     `json:"oldLineNumber,omitempty"`
	NewLine int     `json:"newLineNumber,omitempty"`
}

// Prefix returns the unified diff marker for the row type
func (r Row) Prefix() string {
	switch r.Type {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts unified diff text into rows. Only lines inside a hunk are
// kept: file headers, hunk headers and "\ No newline at end of file" markers
// never produce rows. Each row records the line counters as they stood
// before the row advanced them.
func Parse(text string) []Row {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var (
		rows             []Row
		oldNo, newNo     int
		oldLeft, newLeft int
		inHunk           bool
	)

	for _, line := range lines {
		if m := hunkHeader.FindStringSubmatch(line); m != nil {
			oldNo, oldLeft = hunkRange(m[1], m[2])
			newNo, newLeft = hunkRange(m[3], m[4])
			inHunk = true
			continue
		}
		if strings.HasPrefix(line, `\`) {
			continue
		}
		if !inHunk {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			rows = append(rows, Row{Type: Added, Content: line[1:], NewLine: newNo})
			newNo++
			newLeft--
		case strings.HasPrefix(line, "-"):
			rows = append(rows, Row{Type: Removed, Content: line[1:], OldLine: oldNo})
			oldNo++
			oldLeft--
		case line == "" || strings.HasPrefix(line, " "):
			content := ""
			if line != "" {
				content = line[1:]
			}
			rows = append(rows, Row{Type: Context, Content: content, OldLine: oldNo, NewLine: newNo})
			oldNo++
			newNo++
			oldLeft--
			newLeft--
		default:
			// unrecognised lines are skipped; the hunk counts decide where it ends
			continue
		}

		if oldLeft <= 0 && newLeft <= 0 {
			inHunk = false
		}
	}

	return rows
}

func hunkRange(start, count string) (int, int) {
	s, _ := strconv.Atoi(start)
	if count == "" {
		return s, 1
	}
	c, _ := strconv.Atoi(count)
	return s, c
}

// Stats counts added and removed rows
func Stats(rows []Row) (added, removed int) {
	for _, r := range rows {
		switch r.Type {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}
