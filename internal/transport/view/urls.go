package view

import (
	"net/url"
)

// NamespaceURL is the landing page of a namespace
func NamespaceURL(ns string) string {
	return FilesURL(ns, "")
}

// FilesURL lists dir inside ns
func FilesURL(ns, dir string) string {
	u := "/ns/" + url.PathEscape(ns) + "/files"
	if dir != "" {
		u += "?path=" + url.QueryEscape(dir)
	}
	return u
}

// FileURL shows one file
func FileURL(ns, dir, name string) string {
	return fileURL(ns, "file", dir, name)
}

// FileEditURL opens the editor for one file
func FileEditURL(ns, dir, name string) string {
	return fileURL(ns, "file/edit", dir, name)
}

// FileHistoryURL lists the commits of one file
func FileHistoryURL(ns, dir, name string) string {
	return fileURL(ns, "file/history", dir, name)
}

// FileRawURL downloads one file
func FileRawURL(ns, dir, name string) string {
	return fileURL(ns, "file/raw", dir, name)
}

// FileDiffURL shows the changes of one commit of a file
func FileDiffURL(ns, dir, name, commit string) string {
	return fileURL(ns, "file/diff", dir, name) + "&commit=" + url.QueryEscape(commit)
}

// VaultURL is the vault page of ns
func VaultURL(ns string) string {
	return "/ns/" + url.PathEscape(ns) + "/vault"
}

// VaultDiffURL shows the changes of one vault commit
func VaultDiffURL(ns, commit string) string {
	return VaultURL(ns) + "/diff?commit=" + url.QueryEscape(commit)
}

// VaultHistoryURL lists the vault commits of ns
func VaultHistoryURL(ns string) string {
	return VaultURL(ns) + "/history"
}

// ExportURL is where an export of ns is requested
func ExportURL(ns string) string {
	return "/ns/" + url.PathEscape(ns) + "/export"
}

// EventsURL is the events feed of ns
func EventsURL(ns string) string {
	return "/ns/" + url.PathEscape(ns) + "/events"
}

// NotifyURL is the notification feed of ns
func NotifyURL(ns string) string {
	return "/ns/" + url.PathEscape(ns) + "/notify"
}

func fileURL(ns, page, dir, name string) string {
	q := url.Values{}
	q.Set("path", dir)
	q.Set("name", name)
	return "/ns/" + url.PathEscape(ns) + "/" + page + "?" + q.Encode()
}
