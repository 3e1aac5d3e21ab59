package fdict

import (
	"fmt"
	"strings"
)

const DefaultDelimiter = "/"

// Codec joins path segments into flat keys and splits them back.
type Codec struct {
	delim string
}

func NewCodec(delim string) (Codec, error) {
	if delim == "" {
		return Codec{}, pathErrf("codec", "", ErrInvalidPath, "empty delimiter")
	}
	return Codec{delim}, nil
}

func (c Codec) Delimiter() string {
	return c.delim
}

// Join builds a flat key. Segments must be non-empty and must not contain
// the delimiter.
func (c Codec) Join(segments ...string) (string, error) {
	if c.delim == "" {
		return "", pathErrf("join", "", ErrInvalidPath, "empty delimiter")
	}
	for _, seg := range segments {
		if err := c.checkSegment("join", seg); err != nil {
			return "", err
		}
	}
	return strings.Join(segments, c.delim), nil
}

func (c Codec) Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, c.delim)
}

// IsDescendant reports whether key equals ancestor or lies below it.
// The root (empty ancestor) contains every key.
func (c Codec) IsDescendant(ancestor, key string) bool {
	if ancestor == "" {
		return true
	}
	if !strings.HasPrefix(key, ancestor) {
		return false
	}
	rest := key[len(ancestor):]
	return rest == "" || strings.HasPrefix(rest, c.delim)
}

// Ancestors calls fn for each strict ancestor of key, shallowest first.
// The root is not reported.
func (c Codec) Ancestors(key string, fn func(ancestor string)) {
	off := 0
	for {
		i := strings.Index(key[off:], c.delim)
		if i < 0 {
			return
		}
		fn(key[:off+i])
		off += i + len(c.delim)
	}
}

// Parent returns the parent path and the last segment of key. The parent of
// a top-level key is the root ("").
func (c Codec) Parent(key string) (parent, name string) {
	i := strings.LastIndex(key, c.delim)
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+len(c.delim):]
}

func (c Codec) child(base, rel string) string {
	if base == "" {
		return rel
	}
	if rel == "" {
		return base
	}
	return base + c.delim + rel
}

// relative strips base and the following delimiter from key, which must be
// a strict descendant of base.
func (c Codec) relative(base, key string) string {
	if base == "" {
		return key
	}
	return key[len(base)+len(c.delim):]
}

func (c Codec) nodePrefix(base string) string {
	if base == "" {
		return ""
	}
	return base + c.delim
}

func (c Codec) markerKey(node string) string {
	return node + c.delim
}

func (c Codec) isMarkerKey(key string) bool {
	return strings.HasSuffix(key, c.delim)
}

// checkKey validates a relative key that may contain delimiters.
func (c Codec) checkKey(op, key string) error {
	if key == "" {
		return pathErrf(op, key, ErrInvalidPath, "empty key")
	}
	for _, seg := range strings.Split(key, c.delim) {
		if msg := c.segmentProblem(seg); msg != "" {
			return pathErrf(op, key, ErrInvalidPath, "%s", msg)
		}
	}
	return nil
}

func (c Codec) checkSegment(op, seg string) error {
	if msg := c.segmentProblem(seg); msg != "" {
		return pathErrf(op, seg, ErrInvalidPath, "%s", msg)
	}
	return nil
}

// segmentProblem reports why seg would not survive Join and Split unchanged
// in every position, or "". A multi-character delimiter can form across a
// segment boundary ("x:" + "::" + "y" splits as "x", ":y"), or at the end of
// a key, which would then read as a node marker.
func (c Codec) segmentProblem(seg string) string {
	switch {
	case seg == "":
		return "empty path segment"
	case strings.Contains(seg, c.delim):
		return fmt.Sprintf("segment contains delimiter %q", c.delim)
	case strings.Index(seg+c.delim, c.delim) != len(seg) || strings.HasSuffix(c.delim+seg, c.delim):
		return fmt.Sprintf("segment overlaps delimiter %q", c.delim)
	}
	return ""
}
