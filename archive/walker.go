// Package archive builds Walk abstraction on top of "archive/zip". Office
// Open XML workbooks are zip containers, this is how their parts are reached.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/multierr"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. The file argument is the zip.File structure for file in archive which
// satisfies match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks all files in the archive with names starting with prefix,
// calling walkFn for each item. Archive with any entry which has path
// traversal components ("..") or absolute path is rejected.
func Walk(archive, prefix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Parts reads all files with names starting with prefix into memory, keyed
// by their names in archive.
func Parts(archive, prefix string) (map[string][]byte, error) {
	parts := make(map[string][]byte)
	err := Walk(archive, prefix, func(_ string, f *zip.File) error {
		data, err := readPart(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.FileHeader.Name, err)
		}
		parts[f.FileHeader.Name] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func readPart(f *zip.File) (data []byte, err error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, r.Close())
	}()
	return io.ReadAll(r)
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
