package kkr

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// compressedExts lists the suffixes tried after the plain file name,
// in order
var compressedExts = []string{".gz", ".zst"}

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() (err error) {
	for _, c := range m.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// openFile opens path and, judging by its extension, wraps it in the
// matching decompressor
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &multiCloser{gz, []func() error{gz.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &multiCloser{zr, []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	}
	return f, nil
}

// loadText reads the whole of path into a Text named after the
// uncompressed file
func loadText(path string) (*Text, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	name := filepath.Base(path)
	for _, ext := range compressedExts {
		name = strings.TrimSuffix(name, ext)
	}
	return ReadText(name, rc)
}
