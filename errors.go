package fdict

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrUnsupported    = errors.New("unsupported operation")
	ErrNotFound       = errors.New("not found")
	ErrInvalidOptions = errors.New("invalid options")
	ErrClosed         = errors.New("store closed")
	ErrReadOnly       = errors.New("store is read-only")
)

// PathError reports a failed operation on a particular flat key.
type PathError struct {
	Op   string
	Path string
	Msg  string
	Err  error
}

func pathErrf(op, path string, err error, format string, args ...any) error {
	return &PathError{op, path, fmt.Sprintf(format, args...), err}
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func (e *PathError) Error() string {
	var buf strings.Builder
	buf.WriteString("fdict: ")
	buf.WriteString(e.Op)
	buf.WriteString(" ")
	buf.WriteString(quotePath(e.Path))
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// StorageError wraps a failure reported by a Backend.
type StorageError struct {
	Op   string
	File string
	Err  error
}

func storageErrf(op, file string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{op, file, err}
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("fdict: storage %s %s: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("fdict: storage %s: %v", e.Op, e.Err)
}

// DataError reports a stored value that cannot be decoded.
type DataError struct {
	Key  string
	Data []byte
	Err  error
	Msg  string
}

func dataErrf(key string, data []byte, err error, format string, args ...any) error {
	return &DataError{key, data, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	n := len(e.Data)
	p := e.Data
	var ellipsis string
	if n > prefixLen {
		p, ellipsis = e.Data[:prefixLen], "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v: (%d) %x%s", quotePath(e.Key), e.Msg, e.Err, n, p, ellipsis)
	}
	return fmt.Sprintf("%s: %s: (%d) %x%s", quotePath(e.Key), e.Msg, n, p, ellipsis)
}

func quotePath(path string) string {
	if path == "" {
		return "<root>"
	}
	return fmt.Sprintf("%q", path)
}
