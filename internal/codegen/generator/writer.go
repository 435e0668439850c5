package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no output encoding is configured.
const DefaultEncoding = "utf-8"

// Writer encodes rendered text and writes it only when the bytes on disk
// differ.
type Writer struct {
	enc encoding.Encoding
}

// NewWriter accepts "utf-8", "utf-8-sig" (UTF-8 with a byte order mark) and
// any WHATWG encoding label such as "gbk" or "windows-1252".
func NewWriter(name string) (*Writer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return &Writer{}, nil
	case "utf-8-sig", "utf8-sig", "utf-8-bom":
		return &Writer{enc: unicode.UTF8BOM}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownEncoding, name, err)
	}
	return &Writer{enc: enc}, nil
}

func (w *Writer) Encode(content string) ([]byte, error) {
	if w.enc == nil {
		return []byte(content), nil
	}
	out, err := w.enc.NewEncoder().String(content)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return []byte(out), nil
}

// Write stores content at path, creating parent directories. It reports
// whether the file was written and how many bytes; a file whose digest
// already matches is left untouched.
func (w *Writer) Write(path, content string) (bool, int, error) {
	data, err := w.Encode(content)
	if err != nil {
		return false, 0, err
	}
	if sameContent(path, data) {
		return false, 0, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, 0, fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, 0, fmt.Errorf("write %s: %w", path, err)
	}
	return true, len(data), nil
}

// sameContent reports whether the file at path holds exactly data. The file
// is streamed through the hash so large outputs are never held in memory
// twice; a size mismatch answers without reading.
func sameContent(path string, data []byte) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.Size() != int64(len(data)) {
		return false
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return false
	}
	if _, err := io.Copy(h, f); err != nil {
		return false
	}
	want := blake2b.Sum256(data)
	return bytes.Equal(h.Sum(nil), want[:])
}
