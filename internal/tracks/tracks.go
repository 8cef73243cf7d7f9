// Package tracks turns a path on disk into an ordered list of playable tracks.
package tracks

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hdxtunes/pkg/spec"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
)

// Track is an immutable reference to an audio file.
type Track struct {
	Path string
	Name string // file stem
}

func New(path string) Track {
	base := filepath.Base(path)
	return Track{
		Path: path,
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Supported reports whether path has one of the playable extensions.
func Supported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, f := range spec.SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// Load returns the tracks under path in pending-queue order (bottom first).
// A directory yields its supported direct children sorted then reversed,
// so the lexicographically first file ends on top. Anything else is a
// single track, whatever its extension.
func Load(path string) ([]Track, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []Track{New(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", path)
	}

	var paths []string
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		p := filepath.Join(path, e.Name())
		if Supported(p) {
			paths = append(paths, p)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return FromPaths(paths), nil
}

func FromPaths(paths []string) []Track {
	out := make([]Track, 0, len(paths))
	for _, p := range paths {
		out = append(out, New(p))
	}
	return out
}

// Paths is the inverse of FromPaths.
func Paths(list []Track) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Path)
	}
	return out
}

// Names lists display names, optionally last-first, capped at limit (0 = all).
func Names(list []Track, reverse bool, limit int) []string {
	out := make([]string, 0, len(list))
	for i := range list {
		idx := i
		if reverse {
			idx = len(list) - 1 - i
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[idx].Name)
	}
	return out
}

// Tags is the subset of embedded metadata shown while a track plays.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   int
}

func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, errors.Wrap(err, "open track")
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, errors.Wrapf(err, "read tags %s", filepath.Base(path))
	}
	return Tags{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
		Year:   m.Year(),
	}, nil
}
