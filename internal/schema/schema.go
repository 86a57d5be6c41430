// Package schema declares the authoritative shape of a valid transaction
// record. A Schema is pure data: field specs with ordered constraints plus
// the global strict/coerce policies. Evaluation lives in the curator package.
package schema

import (
	"errors"
	"fmt"
	"regexp"
)

// TimestampLayout is the wire format for transaction timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// FieldType is the declared type a raw value must coerce to before
// constraint evaluation.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeFloat    FieldType = "float"
	TypeInt      FieldType = "int"
	TypeDateTime FieldType = "datetime"
)

// Kind tags a constraint, and doubles as the violation tag reported when the
// predicate fails. The last five kinds are reported by the validator and
// partitioner but never declared on a field.
type Kind string

const (
	KindPattern     Kind = "pattern"
	KindGreaterThan Kind = "greater_than"
	KindOneOf       Kind = "one_of"
	KindLength      Kind = "length"

	KindType             Kind = "type"
	KindRequired         Kind = "required"
	KindMissingColumn    Kind = "missing_column"
	KindUnexpectedColumn Kind = "unexpected_column"
	KindDuplicateKey     Kind = "duplicate_key"
)

// ErrMalformed marks configuration errors detected by Compile. These are
// fatal at startup, never per-record outcomes.
var ErrMalformed = errors.New("malformed schema")

// Constraint is a single named, parameterized predicate. Exactly the fields
// relevant to its Kind are set.
type Constraint struct {
	Kind Kind

	Expr string // KindPattern
	re   *regexp.Regexp

	Bound float64 // KindGreaterThan

	Allowed []string // KindOneOf

	MinLen int // KindLength
	MaxLen int
}

// Pattern requires the raw value to match the anchored expression.
func Pattern(expr string) Constraint {
	return Constraint{Kind: KindPattern, Expr: expr}
}

// GreaterThan requires the coerced numeric value to be strictly above bound.
func GreaterThan(bound float64) Constraint {
	return Constraint{Kind: KindGreaterThan, Bound: bound}
}

// OneOf requires the raw value to be a member of the allowed set.
func OneOf(allowed ...string) Constraint {
	return Constraint{Kind: KindOneOf, Allowed: allowed}
}

// Length requires the raw value's length in bytes to be within [min, max].
func Length(min, max int) Constraint {
	return Constraint{Kind: KindLength, MinLen: min, MaxLen: max}
}

// Regexp returns the compiled pattern. Valid only after Compile.
func (c Constraint) Regexp() *regexp.Regexp { return c.re }

// FieldSpec declares one field: its type, its ordered constraints, and the
// uniqueness and nullability flags.
type FieldSpec struct {
	Name        string
	Type        FieldType
	Constraints []Constraint
	Unique      bool
	Nullable    bool
}

// Schema is an ordered list of field specs with global policy. Strict rejects
// extra or missing columns; Coerce attempts type conversion before
// constraint checks.
type Schema struct {
	Fields []FieldSpec
	Strict bool
	Coerce bool

	byName map[string]int
}

// Field returns the spec for the named field.
func (s *Schema) Field(name string) (*FieldSpec, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

// Columns returns the field names in declaration order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Compile validates the schema and compiles its patterns. Any failure is a
// configuration error wrapping ErrMalformed; the caller must treat it as
// fatal before the first record is seen.
func (s *Schema) Compile() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields declared", ErrMalformed)
	}
	s.byName = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("%w: field %d has no name", ErrMalformed, i)
		}
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrMalformed, f.Name)
		}
		s.byName[f.Name] = i

		switch f.Type {
		case TypeString, TypeFloat, TypeInt, TypeDateTime:
		default:
			return fmt.Errorf("%w: field %q has unknown type %q", ErrMalformed, f.Name, f.Type)
		}

		for j := range f.Constraints {
			c := &f.Constraints[j]
			switch c.Kind {
			case KindPattern:
				re, err := regexp.Compile(c.Expr)
				if err != nil {
					return fmt.Errorf("%w: field %q pattern %q: %v", ErrMalformed, f.Name, c.Expr, err)
				}
				c.re = re
			case KindGreaterThan:
				if f.Type != TypeFloat && f.Type != TypeInt {
					return fmt.Errorf("%w: field %q: greater_than requires a numeric type, got %q",
						ErrMalformed, f.Name, f.Type)
				}
			case KindOneOf:
				if len(c.Allowed) == 0 {
					return fmt.Errorf("%w: field %q: one_of with empty set", ErrMalformed, f.Name)
				}
			case KindLength:
				if c.MinLen < 0 || c.MaxLen < c.MinLen {
					return fmt.Errorf("%w: field %q: invalid length bounds [%d, %d]",
						ErrMalformed, f.Name, c.MinLen, c.MaxLen)
				}
			default:
				return fmt.Errorf("%w: field %q has unknown constraint kind %q", ErrMalformed, f.Name, c.Kind)
			}
		}
	}
	return nil
}
