package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// ColumnUpdates builds a column->value map from the non-nil pointer fields of a DTO.
// The column name comes from the `col` tag, falling back to the `json` tag (before any options).
// Fields tagged `col:"-"` are skipped; callers handle those (dates, nested items) themselves.
func ColumnUpdates(dto any) map[string]any {
	res := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return res
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return res
	}
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name := sf.Tag.Get("col")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.Split(sf.Tag.Get("json"), ",")[0]
		}
		if name == "" || name == "-" {
			continue
		}
		res[name] = fv.Elem().Interface()
	}
	return res
}

func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ContainsPattern turns free text into a case-insensitive LIKE pattern; pair it with LOWER(col).
func ContainsPattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}
