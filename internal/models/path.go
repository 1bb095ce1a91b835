package models

import "strings"

// NormalizePath turns user or server supplied folder paths into the canonical
// form used as map keys: no leading or trailing slash, no empty segments.
// The root folder is the empty string.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// JoinPath appends name to parent
func JoinPath(parent, name string) string {
	parent = NormalizePath(parent)
	name = NormalizePath(name)
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	return parent + "/" + name
}

// ParentPath returns the folder containing p, or "" for top-level paths
func ParentPath(p string) string {
	p = NormalizePath(p)
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[:idx]
	}
	return ""
}

// BaseName returns the last segment of p
func BaseName(p string) string {
	p = NormalizePath(p)
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// Breadcrumbs builds the navigation trail for p, one crumb per segment
func Breadcrumbs(p string) []Breadcrumb {
	p = NormalizePath(p)
	if p == "" {
		return nil
	}
	var crumbs []Breadcrumb
	path := ""
	for _, part := range strings.Split(p, "/") {
		path = JoinPath(path, part)
		crumbs = append(crumbs, Breadcrumb{Name: part, Path: path})
	}
	return crumbs
}
