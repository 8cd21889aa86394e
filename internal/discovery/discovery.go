// Package discovery lists candidate trace files in a directory.
package discovery

import (
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoMatch is returned by First when the directory has no matching file.
var ErrNoMatch = errors.New("no matching file")

const batchSize = 64

// Files yields the names of regular files in dir whose extension equals ext
// ("csv" and ".csv" are equivalent, case is ignored). The directory is read
// lazily in batches each time the sequence is ranged over; order is whatever
// the filesystem returns. A read failure is yielded once as the error.
func Files(dir, ext string) iter.Seq2[string, error] {
	suffix := "." + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	return func(yield func(string, error) bool) {
		d, err := os.Open(dir)
		if err != nil {
			yield("", err)
			return
		}
		defer d.Close()

		for {
			entries, err := d.ReadDir(batchSize)
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
					continue
				}
				if !yield(e.Name(), nil) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
		}
	}
}

// Sorted collects Files into a lexically ordered slice.
func Sorted(dir, ext string) ([]string, error) {
	var out []string
	for name, err := range Files(dir, ext) {
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

// First returns the path of the first matching file in listing order.
func First(dir, ext string) (string, error) {
	for name, err := range Files(dir, ext) {
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	}
	return "", ErrNoMatch
}
