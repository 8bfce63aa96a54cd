package core

// validation.go checks CSV input against an entity's field specs.
//
// Validation happens at two levels:
//  1. Header validation: every spec'd column is present (by name or alias)
//  2. Row validation: cells are valid UTF-8, required cells are non-empty
//     and typed cells parse
//
// There is no skip-and-continue mode: the first invalid row aborts the run,
// so the validator returns the first problem only.

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError describes a single invalid cell.
type ValidationError struct {
	Field   string // Field spec name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %q", e.Message, e.Value)
	}
	return e.Message
}

// ValidateHeaders resolves every field spec to a column position.
// The returned index is keyed by lowercase field name, so callers never need to
// know which alias the file used. Returns an error listing missing columns.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	raw := MakeHeaderIndex(headers)
	idx := make(HeaderIndex, len(specs))
	var missing []string

	for _, spec := range specs {
		pos, ok := lookupColumn(raw, spec)
		if !ok {
			missing = append(missing, spec.Name)
			continue
		}
		idx[strings.ToLower(spec.Name)] = pos
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func lookupColumn(raw HeaderIndex, spec FieldSpec) (int, bool) {
	if pos, ok := raw[strings.ToLower(spec.Name)]; ok {
		return pos, true
	}
	for _, alias := range spec.Aliases {
		if pos, ok := raw[strings.ToLower(alias)]; ok {
			return pos, true
		}
	}
	return 0, false
}

// RowValidator validates rows against an entity's field specifications.
type RowValidator struct {
	specs     []FieldSpec
	headerIdx HeaderIndex
}

// NewRowValidator creates a validator for an index built by ValidateHeaders.
func NewRowValidator(specs []FieldSpec, headerIdx HeaderIndex) *RowValidator {
	return &RowValidator{specs: specs, headerIdx: headerIdx}
}

// Decode validates a row and returns its values keyed by field name.
// The error, if any, is a ValidationError for the first offending field.
//
// Text cells are returned unchanged; they feed Source Keys. Only typed cells
// are cleaned before parsing. Blank cells decode to "".
func (v *RowValidator) Decode(row []string) (map[string]string, error) {
	out := make(map[string]string, len(v.specs))

	for _, spec := range v.specs {
		pos, ok := v.headerIdx[strings.ToLower(spec.Name)]
		if !ok || pos >= len(row) {
			return nil, ValidationError{Field: spec.Name, Message: "missing column"}
		}

		raw := row[pos]
		if !utf8.ValidString(raw) {
			return nil, ValidationError{Field: spec.Name, Value: raw, Message: "invalid UTF-8"}
		}
		if strings.TrimSpace(raw) == "" {
			if spec.Required {
				return nil, ValidationError{Field: spec.Name, Message: "required field is empty"}
			}
			out[spec.Name] = ""
			continue
		}

		if spec.Type == FieldText {
			out[spec.Name] = raw
			continue
		}

		cell := CleanCell(raw)
		if err := ValidateCell(cell, spec); err != nil {
			return nil, ValidationError{Field: spec.Name, Value: cell, Message: err.Error()}
		}
		out[spec.Name] = cell
	}

	return out, nil
}

// ValidateCell validates a single non-empty cell against a field specification.
func ValidateCell(value string, spec FieldSpec) error {
	if value == "" {
		return nil
	}

	switch spec.Type {
	case FieldNumeric:
		if _, ok := ToInt(value); !ok {
			return fmt.Errorf("invalid %s", fieldTypeName(spec.Type))
		}
	case FieldTimestamp:
		if _, ok := ToTimestamp(value); !ok {
			return fmt.Errorf("invalid timestamp (use unix seconds or YYYY-MM-DDTHH:MM:SSZ)")
		}
	case FieldBool:
		if _, ok := ToBool(value); !ok {
			return fmt.Errorf("must be yes/no, true/false, or 1/0")
		}
	}
	return nil
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldTimestamp:
		return "timestamp"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	default:
		return "value"
	}
}
