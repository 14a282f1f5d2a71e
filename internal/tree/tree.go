// Package tree normalizes the slash-separated paths used to address
// directories and files inside a namespace.
package tree

import (
	"path"
	"strings"

	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

// Normalize cleans p into the form the config server expects: no leading
// or trailing slash, no empty or "." segments. The root is "". Paths that
// climb above the root are rejected.
func Normalize(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", apperrors.ValidationError("path", "Path may not contain '..'")
		}
	}
	clean := path.Clean("/" + p)
	return strings.Trim(clean, "/"), nil
}

// Join appends name to dir and normalizes the result
func Join(dir, name string) (string, error) {
	return Normalize(dir + "/" + name)
}

// Split separates a file path into its directory and file name
func Split(p string) (dir, name string) {
	p = strings.Trim(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}

// Parent returns the directory containing p; the parent of the root is the root
func Parent(p string) string {
	dir, _ := Split(p)
	return dir
}

// Crumb is one clickable segment of a breadcrumb trail
type Crumb struct {
	Name string
	Path string
}

// Breadcrumbs returns one crumb per segment of p, each carrying the path up to it
func Breadcrumbs(p string) []Crumb {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	segs := strings.Split(p, "/")
	crumbs := make([]Crumb, 0, len(segs))
	for i, s := range segs {
		crumbs = append(crumbs, Crumb{Name: s, Path: strings.Join(segs[:i+1], "/")})
	}
	return crumbs
}
