// Package state persists the play queue between runs as one path per line.
package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Load returns the saved paths, creating an empty file when missing.
func Load(path string) ([]string, error) {
	if err := ensureFile(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read queue")
	}

	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// Save overwrites the file with paths in queue storage order.
func Save(path string, paths []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	if err := os.WriteFile(path, []byte(strings.Join(paths, "\n")), 0644); err != nil {
		return errors.Wrap(err, "write queue")
	}
	return nil
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return errors.Wrap(err, "create queue file")
	}
	return f.Close()
}
