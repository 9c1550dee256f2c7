package datestore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// File is a date store on disk. It is owned by exactly one reminder job.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: filepath.Clean(path)} }

func (f *File) Path() string { return f.path }

// ReadLines returns every line of the file in order, without the trailing
// "\n". A "\r" before it is kept, so a rewrite reproduces CRLF lines
// verbatim. Lines have no length limit.
func (f *File) ReadLines() ([]string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var lines []string
	r := bufio.NewReader(fh)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.path, err)
		}
	}
}

// Rewrite replaces the file contents with lines, one per line.
//
// The new contents go to a temp file in the same directory which is then
// renamed over the store, so a failed rewrite leaves the previous contents
// in place.
func (f *File) Rewrite(lines []string) (err error) {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", f.path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if fi, statErr := os.Stat(f.path); statErr == nil {
		if err := tmp.Chmod(fi.Mode().Perm()); err != nil {
			return fmt.Errorf("chmod temp for %s: %w", f.path, err)
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return statErr
	}

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(strings.TrimRight(line, "\n")); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
