package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/renovation-quote/internal/common"
	"github.com/Veraticus/renovation-quote/internal/model"
)

// Format is an on-disk quote encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported quote format %q", s)
}

// FormatForPath picks the encoding from a file extension. Anything that is
// not .yaml or .yml is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// DefaultPath is where a quote lands when no path is given.
func DefaultPath(dir string, q *model.Quote, format Format) string {
	ext := ".json"
	if format == FormatYAML {
		ext = ".yaml"
	}
	return filepath.Join(dir, "quote_"+q.ID+ext)
}

// WriteQuote serializes q to path and returns the path written. An empty
// path writes to dir under the quote's ID; a path without extension gets
// .json. Parent directories are created. The quote itself is never modified.
func WriteQuote(q *model.Quote, path, dir string) (string, error) {
	if err := validateQuote(q); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	switch {
	case path == "":
		if err := validateString(dir, "dir"); err != nil {
			return "", fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		path = DefaultPath(dir, q, FormatJSON)
	case filepath.Ext(path) == "":
		path += ".json"
	}

	data, err := Encode(q, FormatForPath(path))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("%w: failed to create directory for %s: %w", common.ErrPersistence, path, err)
	}

	// Written to a temp file in the same directory, then renamed into place.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".quote-*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create temp file: %w", common.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: failed to write %s: %w", common.ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %w", common.ErrPersistence, path, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return "", fmt.Errorf("%w: failed to set permissions on %s: %w", common.ErrPersistence, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: failed to move quote into %s: %w", common.ErrPersistence, path, err)
	}

	return path, nil
}

// ReadQuote loads a quote, decoding by file extension.
func ReadQuote(path string) (*model.Quote, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", common.ErrPersistence, path, err)
	}

	q, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Encode renders q in the given format.
func Encode(q *model.Quote, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(q)
	default:
		data, err = json.MarshalIndent(q, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode quote: %w", common.ErrPersistence, err)
	}
	return data, nil
}

// Decode parses a quote document and validates it.
func Decode(data []byte, format Format) (*model.Quote, error) {
	var q model.Quote
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &q)
	default:
		err = json.Unmarshal(data, &q)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode quote: %w", common.ErrPersistence, err)
	}
	if err := validateQuote(&q); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	return &q, nil
}
