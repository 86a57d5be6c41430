package curator

import (
	"sort"
	"strconv"
	"time"

	"github.com/veridata/txn-curator/internal/schema"
	"github.com/veridata/txn-curator/internal/tabular"
)

// Violation names one failed constraint on one field.
type Violation struct {
	Field      string
	Constraint schema.Kind
}

// Outcome is the validation result for a single record. An empty violation
// list means the record is valid at record scope; batch-wide uniqueness is
// the partitioner's job.
type Outcome struct {
	Violations []Violation
}

// Valid reports whether the record had zero violations.
func (o Outcome) Valid() bool { return len(o.Violations) == 0 }

func (o *Outcome) add(field string, kind schema.Kind) {
	o.Violations = append(o.Violations, Violation{Field: field, Constraint: kind})
}

// ValidateRecord checks one record against the schema. It is a pure function
// of the record and the schema: every failing constraint is collected, in
// field declaration order, with no short-circuit on the first failure. A
// coercion failure records a type violation and skips that field's remaining
// constraints, since they would be evaluating garbage.
func ValidateRecord(rec tabular.Record, sch *schema.Schema) Outcome {
	var out Outcome

	for _, spec := range sch.Fields {
		raw, present := rec[spec.Name]
		if !present {
			if sch.Strict {
				out.add(spec.Name, schema.KindMissingColumn)
			}
			continue
		}
		if raw == "" {
			if !spec.Nullable {
				out.add(spec.Name, schema.KindRequired)
			}
			continue
		}
		if sch.Coerce {
			if !coerces(spec.Type, raw) {
				out.add(spec.Name, schema.KindType)
				continue
			}
		}
		for _, c := range spec.Constraints {
			if !satisfies(c, raw) {
				out.add(spec.Name, c.Kind)
			}
		}
	}

	if sch.Strict {
		var extra []string
		for name := range rec {
			if _, known := sch.Field(name); !known {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra) // record is a map; keep violation order deterministic
		for _, name := range extra {
			out.add(name, schema.KindUnexpectedColumn)
		}
	}

	return out
}

// coerces reports whether the raw value converts to the declared type.
func coerces(t schema.FieldType, raw string) bool {
	switch t {
	case schema.TypeFloat:
		_, err := strconv.ParseFloat(raw, 64)
		return err == nil
	case schema.TypeInt:
		_, err := strconv.ParseInt(raw, 10, 64)
		return err == nil
	case schema.TypeDateTime:
		_, err := time.Parse(schema.TimestampLayout, raw)
		return err == nil
	default:
		return true
	}
}

// satisfies evaluates one constraint against a raw value that already passed
// coercion. This is the single dispatch point for every constraint kind.
func satisfies(c schema.Constraint, raw string) bool {
	switch c.Kind {
	case schema.KindPattern:
		return c.Regexp().MatchString(raw)
	case schema.KindGreaterThan:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		return v > c.Bound
	case schema.KindOneOf:
		for _, allowed := range c.Allowed {
			if raw == allowed {
				return true
			}
		}
		return false
	case schema.KindLength:
		return len(raw) >= c.MinLen && len(raw) <= c.MaxLen
	default:
		// Compile rejects unknown kinds before any record is seen.
		return false
	}
}
