package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// staticFS hides dot-files (.env, .git, ...) and explicitly denied paths from
// the file server, both when opened directly and in directory listings.
type staticFS struct {
	root http.FileSystem
	deny map[string]bool
}

func newStaticFS(root http.FileSystem, deny []string) staticFS {
	m := make(map[string]bool, len(deny))
	for _, p := range deny {
		if p = strings.TrimSpace(p); p != "" {
			m[strings.ToLower(path.Clean("/"+p))] = true
		}
	}
	return staticFS{root: root, deny: m}
}

func (s staticFS) hidden(name string) bool {
	name = path.Clean("/" + name)
	if s.deny[strings.ToLower(name)] {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func (s staticFS) Open(name string) (http.File, error) {
	if s.hidden(name) {
		return nil, fs.ErrNotExist
	}
	f, err := s.root.Open(name)
	if err != nil {
		return nil, err
	}
	return staticFile{File: f, dir: path.Clean("/" + name), fs: s}, nil
}

type staticFile struct {
	http.File
	dir string
	fs  staticFS
}

func (f staticFile) Readdir(n int) ([]fs.FileInfo, error) {
	entries, err := f.File.Readdir(n)
	kept := entries[:0]
	for _, e := range entries {
		if !f.fs.hidden(path.Join(f.dir, e.Name())) {
			kept = append(kept, e)
		}
	}
	return kept, err
}
