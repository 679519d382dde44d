package metadata

import (
	"fmt"
	"log/slog"
)

// Record is one raw provider-supplied mapping, either a link or a
// network description.
type Record map[string]any

// RecoveryFunc is invoked when a required field is missing from a raw
// record. It receives the raw record and the partially resolved result;
// returning true means the hook injected the missing value into the
// partial result and resolution may continue.
type RecoveryFunc func(raw Record, partial Record) bool

// Field describes one logical attribute of a link or network record:
// where to find it, what to fall back to, and how to recover when it
// is absent. A Field is immutable once constructed.
type Field struct {
	// Name is the canonical key. It is always checked before any alias.
	Name string
	// Aliases are provider-specific keys, checked in declaration order.
	Aliases []string
	// Default is the value used when the field is optional and absent.
	Default any
	// DefaultFunc, when set, produces a fresh default per resolution.
	// Used for generated ids so two records never share one.
	DefaultFunc func() any
	// Required marks the field as mandatory for the record.
	Required bool
	// OnError is the per-field recovery hook for missing required data.
	OnError RecoveryFunc
}

// FieldMissingError reports a required field absent from a raw record
// under its canonical name and every alias.
type FieldMissingError struct {
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("the required field %q is missing", e.Field)
}

// resolveField finds the field's value in the raw record. The canonical
// name wins over any alias; aliases are tried in declaration order.
func resolveField(field Field, raw Record) (any, error) {
	if value, ok := raw[field.Name]; ok {
		return value, nil
	}
	for _, alias := range field.Aliases {
		if value, ok := raw[alias]; ok {
			return value, nil
		}
	}

	if !field.Required {
		if field.DefaultFunc != nil {
			return field.DefaultFunc(), nil
		}
		return field.Default, nil
	}
	return nil, &FieldMissingError{Field: field.Name}
}

// resolveFields resolves every field against the raw record, in
// declared field order so recovery hooks can rely on already-resolved
// siblings. A missing required field without a successful recovery
// rejects the whole record: resolveFields returns nil and the caller
// is expected to skip the record and carry on with the next one.
func resolveFields(fields []Field, raw Record, logger *slog.Logger) Record {
	resolved := Record{}
	for _, field := range fields {
		value, err := resolveField(field, raw)
		if err != nil {
			logger.Warn("failed to process record field",
				"field", field.Name, "error", err)
			if field.OnError != nil {
				logger.Debug("running recovery hook", "field", field.Name)
				if field.OnError(raw, resolved) {
					continue
				}
			}
			return nil
		}
		resolved[field.Name] = value
	}
	return resolved
}

// replaceField swaps the field with the same canonical name, keeping
// the declared resolution order intact; an unknown name is appended.
// An override without its own recovery hook keeps the existing one.
func replaceField(fields []Field, override Field) []Field {
	for i, field := range fields {
		if field.Name != override.Name {
			continue
		}
		if override.OnError == nil {
			override.OnError = field.OnError
		}
		fields[i] = override
		return fields
	}
	return append(fields, override)
}
