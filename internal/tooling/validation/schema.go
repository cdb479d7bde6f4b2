package validation

import (
	"encoding/json"
	"strings"
)

// FieldType is the semantic type a required field must carry.
type FieldType string

const (
	FieldInt    FieldType = "int"
	FieldString FieldType = "str"
	FieldFloat  FieldType = "float"
	FieldList   FieldType = "list"
)

// FieldSpec names one required record field.
type FieldSpec struct {
	Name string
	Type FieldType
}

// SongFields are the required fields of a song record.
var SongFields = []FieldSpec{
	{Name: "id", Type: FieldInt},
	{Name: "title", Type: FieldString},
	{Name: "altTitle", Type: FieldString},
	{Name: "artist", Type: FieldString},
	{Name: "charts", Type: FieldList},
	{Name: "searchKeys", Type: FieldList},
}

// ChartFields are the required fields of a chart record.
var ChartFields = []FieldSpec{
	{Name: "id", Type: FieldInt},
	{Name: "diff", Type: FieldString},
	{Name: "level", Type: FieldString},
	{Name: "cc", Type: FieldFloat},
	{Name: "ver", Type: FieldString},
}

// FieldCheck is the outcome of checking one record against its field specs.
// Mismatched is only populated when Missing is empty.
type FieldCheck struct {
	Missing    []string
	Mismatched []string
}

// OK reports whether every field is present with the expected type.
func (c FieldCheck) OK() bool {
	return len(c.Missing) == 0 && len(c.Mismatched) == 0
}

// CheckFields reports missing fields, or when none are missing, fields whose
// value does not have the expected type. Field order follows specs.
func CheckFields(record map[string]any, specs []FieldSpec) FieldCheck {
	var out FieldCheck
	for _, spec := range specs {
		if _, ok := record[spec.Name]; !ok {
			out.Missing = append(out.Missing, spec.Name)
		}
	}
	if len(out.Missing) > 0 {
		return out
	}
	for _, spec := range specs {
		if !hasType(record[spec.Name], spec.Type) {
			out.Mismatched = append(out.Mismatched, spec.Name)
		}
	}
	return out
}

// hasType decides the type of a decoded value. Numbers decoded with
// UseNumber are ints unless the literal carries a fraction or exponent.
func hasType(v any, t FieldType) bool {
	switch t {
	case FieldString:
		_, ok := v.(string)
		return ok
	case FieldList:
		_, ok := v.([]any)
		return ok
	case FieldInt:
		switch n := v.(type) {
		case json.Number:
			if isFloatLiteral(n) {
				return false
			}
			_, err := n.Int64()
			return err == nil
		case int, int64:
			return true
		}
		return false
	case FieldFloat:
		switch n := v.(type) {
		case json.Number:
			if !isFloatLiteral(n) {
				return false
			}
			_, err := n.Float64()
			return err == nil
		case float64:
			return true
		}
		return false
	default:
		return false
	}
}

func isFloatLiteral(n json.Number) bool {
	return strings.ContainsAny(string(n), ".eE")
}

func intValue(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case json.Number:
		f, _ := n.Float64()
		return f
	case float64:
		return n
	}
	return 0
}
