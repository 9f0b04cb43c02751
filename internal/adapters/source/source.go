// Package source loads leaderboard documents from files or stdin.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/okian/starboard/internal/domain/flatten"
	"github.com/okian/starboard/internal/domain/model"
)

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

// MaxDocumentBytes bounds how much of the input is read.
const MaxDocumentBytes = 64 << 20

// Load reads and decodes the document at path.
func Load(ctx context.Context, path string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if path == StdinPath {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode reads one JSON document. A top-level value that is not an object,
// or a field of the wrong JSON type, is reported as flatten.ErrValidation;
// broken JSON is ErrDecode.
func Decode(r io.Reader) (*model.Document, error) {
	raw, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if len(raw) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooBig, MaxDocumentBytes)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", flatten.ErrValidation)
	}

	var doc model.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: field %s: %w", flatten.ErrValidation, typeErr.Field, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &doc, nil
}
