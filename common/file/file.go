// Package file wraps the handful of filesystem operations the rest of the
// codebase performs, creating missing parent directories along the way
package file

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	filePermission = 0o770
	dirPermission  = 0o770
)

// Write writes data to file, creating any missing parent directories
func Write(file string, data []byte) error {
	if dir := filepath.Dir(file); !Exists(dir) {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return err
		}
	}
	return os.WriteFile(file, data, filePermission)
}

// Writer creates a writer to file, creating any missing parent directories
func Writer(file string) (*os.File, error) {
	if file == "" {
		return nil, errors.New("no file path set")
	}
	if dir := filepath.Dir(file); !Exists(dir) {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermission)
}

// WriteAsCSV writes a matrix of strings to file as CSV rows. Every row
// must carry the same number of columns
func WriteAsCSV(file string, records [][]string) error {
	if len(records) == 0 {
		return errors.New("no records to write")
	}
	columns := len(records[0])
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i := range records {
		if len(records[i]) != columns {
			return fmt.Errorf("row %v has %v columns, expected %v", i, len(records[i]), columns)
		}
		if err := w.Write(records[i]); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return Write(file, buf.Bytes())
}

// Move moves a file across paths, copying when a plain rename cannot span
// the filesystems involved. Moving a file onto itself is a no-op
func Move(sourcePath, destPath string) error {
	sourceAbs, err := filepath.Abs(sourcePath)
	if err != nil {
		return err
	}
	destAbs, err := filepath.Abs(destPath)
	if err != nil {
		return err
	}
	if sourceAbs == destAbs {
		return nil
	}

	in, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("could not open source file: %w", err)
	}
	if dir := filepath.Dir(destPath); !Exists(dir) {
		if err = os.MkdirAll(dir, dirPermission); err != nil {
			closeQuietly(in)
			return err
		}
	}
	out, err := os.Create(destPath)
	if err != nil {
		closeQuietly(in)
		return fmt.Errorf("could not create destination file: %w", err)
	}
	_, err = io.Copy(out, in)
	closeQuietly(in)
	if errClose := out.Close(); errClose != nil && err == nil {
		err = errClose
	}
	if err != nil {
		return fmt.Errorf("could not copy to destination: %w", err)
	}
	return os.Remove(sourcePath)
}

// Exists reports whether a file or directory is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
