package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrSchema = errors.New("schema mismatch")
	ErrParse  = errors.New("parse error")
	ErrData   = errors.New("no valid data")
	ErrNoRows = errors.New("no data rows")
)

// SchemaError reports expected columns missing from a header.
type SchemaError struct {
	Path    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns %s", e.Path, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError reports a retained cell that is not a finite number.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: cannot convert %q to float: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DataError is returned by the binary extractor when a container yields no
// usable trace data. Path may be empty.
type DataError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	msg := "no valid data"
	if e.Path != "" {
		msg = fmt.Sprintf("file %s contains no valid data", e.FileName())
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Is(target error) bool { return target == ErrData }

// FileName is the base name of the offending file, or "" when unknown.
func (e *DataError) FileName() string {
	if e.Path == "" {
		return ""
	}
	return filepath.Base(e.Path)
}
