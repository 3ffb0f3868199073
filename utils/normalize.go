package utils

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize trims string fields and rounds float64 fields on a pointer-to-struct DTO.
// Floats are money and round to satang; fields tagged `norm:"qty"` are quantities and keep three
// decimals, matching the numeric(12,3) columns.
// Pointer fields are touched only when non-nil, so partial-update DTOs keep their nils.
// Slices of structs (document line items) are normalized element by element, also behind a pointer.
func Normalize(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizeValue(v.Elem())
}

// RoundQty rounds a quantity to the three decimals the database keeps.
func RoundQty(x float64) float64 {
	v, _ := decimal.NewFromFloat(x).Round(3).Float64()
	return v
}

func normalizeValue(s reflect.Value) {
	if s.Kind() != reflect.Struct {
		return
	}
	t := s.Type()
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.CanSet() {
			continue
		}
		qty := t.Field(i).Tag.Get("norm") == "qty"
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				continue
			}
			f = f.Elem()
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Float64:
			if qty {
				f.SetFloat(RoundQty(f.Float()))
			} else {
				f.SetFloat(Round2(f.Float()))
			}
		case reflect.Struct:
			normalizeValue(f)
		case reflect.Slice:
			for j := 0; j < f.Len(); j++ {
				el := f.Index(j)
				if el.Kind() == reflect.Ptr {
					if el.IsNil() {
						continue
					}
					el = el.Elem()
				}
				normalizeValue(el)
			}
		}
	}
}
