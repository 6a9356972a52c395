package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

// File stores the ledger as a JSON object mapping period to amount.
type File struct {
	path   string
	logger *log.Logger
}

// NewFile returns a file backend rooted at path. The file is created on the
// first write.
func NewFile(path string, logger *log.Logger) *File {
	return &File{path: path, logger: discardIfNil(logger)}
}

// Name implements Backend.
func (f *File) Name() string { return "file" }

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

// Close implements Backend.
func (f *File) Close() error { return nil }

// ReadAll implements Backend. A missing file reads as empty.
func (f *File) ReadAll(_ context.Context) (map[string]decimal.Decimal, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]decimal.Decimal{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}

	result := make(map[string]decimal.Decimal, len(raw))
	for period, v := range raw {
		result[period] = decodeCell(f.logger, f.Name(), period, v)
	}
	return result, nil
}

// WriteAll overwrites the whole file. Keys are written in entry order and
// values as JSON numbers.
func (f *File) WriteAll(_ context.Context, entries []Entry) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(e.Period)
		if err != nil {
			return err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.WriteString(e.Amount.Round(2).StringFixed(2))
	}
	if len(entries) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".savings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}
