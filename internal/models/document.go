package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrDocumentNotFound is returned by document stores for absent documents.
var ErrDocumentNotFound = errors.New("document not found")

// Document is a schemaless record addressed by a slash-separated path of
// alternating collection and document ids, e.g. "program_terms/CENG-1-guz".
type Document struct {
	Path string                 `json:"path"`
	Data map[string]interface{} `json:"data"`
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// ID returns the last path segment.
func (d Document) ID() string {
	segments := SplitPath(d.Path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// Value returns the first present, non-blank value among keys.
func (d Document) Value(keys ...string) interface{} {
	for _, key := range keys {
		v, ok := d.Data[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// String returns the first present value among keys, formatted as text.
func (d Document) String(keys ...string) string {
	return Stringify(d.Value(keys...))
}

// Int returns the first present value among keys as an integer, 0 when absent
// or not numeric.
func (d Document) Int(keys ...string) int {
	return ToInt(d.Value(keys...))
}

// Stringify formats scalar document values; integral floats lose their ".0".
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// ToInt converts an integer-like value, returning 0 when it is not one.
func ToInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	case fmt.Stringer:
		return ToInt(t.String())
	default:
		return 0
	}
}

// SplitPath splits a document or collection path into segments.
func SplitPath(path string) []string {
	raw := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// JoinPath joins segments into a path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// IsDocumentPath reports whether path addresses a document rather than a collection.
func IsDocumentPath(path string) bool {
	n := len(SplitPath(path))
	return n > 0 && n%2 == 0
}

// CollectionPath returns the collection containing the document at path.
func CollectionPath(docPath string) string {
	segments := SplitPath(docPath)
	if len(segments) < 2 {
		return ""
	}
	return JoinPath(segments[:len(segments)-1]...)
}

// CollectionID returns the id of the collection containing the document at path.
func CollectionID(docPath string) string {
	segments := SplitPath(docPath)
	if len(segments) < 2 {
		return ""
	}
	return segments[len(segments)-2]
}

// ParentDocumentPath returns the document owning the collection that holds
// docPath, or "" for top-level documents.
func ParentDocumentPath(docPath string) string {
	segments := SplitPath(docPath)
	if len(segments) < 4 {
		return ""
	}
	return JoinPath(segments[:len(segments)-2]...)
}
